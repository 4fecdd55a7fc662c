package domain

import (
	"context"
	"time"
)

// LeadStore defines data access operations for leads
type LeadStore interface {
	Create(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	GetByEmail(ctx context.Context, email string) (*Lead, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Lead, error)
	ListByEnrichmentStatus(ctx context.Context, status string, limit int) ([]*Lead, error)
	UpdateEnrichmentStatus(ctx context.Context, id, status string) error
	SaveEnrichmentResult(ctx context.Context, id, status string, likelihood *float64, enrichedData map[string]any) error
	CountByEnrichmentStatus(ctx context.Context) (map[string]int, error)
}

// CompanyStore defines data access operations for companies
type CompanyStore interface {
	GetByID(ctx context.Context, id string) (*Company, error)
	Upsert(ctx context.Context, company *Company) error
}

// CampaignStore defines data access operations for campaigns and participants
type CampaignStore interface {
	GetByProviderID(ctx context.Context, userID int, providerCampaignID string) (*Campaign, error)
	Upsert(ctx context.Context, campaign *Campaign) error
	UpsertParticipant(ctx context.Context, participant *Participant) error
}

// ConnectionStore defines data access operations for external provider credentials
type ConnectionStore interface {
	Get(ctx context.Context, userID int, provider string) (*Connection, error)
	Save(ctx context.Context, conn *Connection) error
}

// CacheRepository defines caching operations
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// TokenBlacklist defines JWT token blacklist operations
type TokenBlacklist interface {
	Add(ctx context.Context, token string, expiration time.Duration) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
}
