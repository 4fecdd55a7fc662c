package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/empowrhq/leadflow/pkg/domain"
)

// CampaignRepository provides SQL-backed campaign and participant persistence
type CampaignRepository struct {
	DB *sql.DB
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{DB: db}
}

// GetByProviderID retrieves a user's local campaign record by the provider's
// campaign ID
func (r *CampaignRepository) GetByProviderID(ctx context.Context, userID int, providerCampaignID string) (*domain.Campaign, error) {
	var c domain.Campaign
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, user_id, provider_campaign_id, name, created_at
		FROM campaigns WHERE user_id = $1 AND provider_campaign_id = $2`,
		userID, providerCampaignID).
		Scan(&c.ID, &c.UserID, &c.ProviderCampaignID, &c.Name, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.NewNotFoundError("campaign")
	}
	if err != nil {
		return nil, domain.NewStorageError(err)
	}

	return &c, nil
}

// Upsert inserts or refreshes a local campaign record
func (r *CampaignRepository) Upsert(ctx context.Context, campaign *domain.Campaign) error {
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = time.Now().UTC()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO campaigns (id, user_id, provider_campaign_id, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, provider_campaign_id) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), campaigns.name)`,
		campaign.ID, campaign.UserID, campaign.ProviderCampaignID, campaign.Name,
		campaign.CreatedAt,
	)
	if err != nil {
		return domain.NewStorageError(err)
	}

	return nil
}

// UpsertParticipant writes a participant's engagement snapshot. One person
// maps to at most one participant row per campaign.
func (r *CampaignRepository) UpsertParticipant(ctx context.Context, p *domain.Participant) error {
	p.UpdatedAt = time.Now().UTC()

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO campaign_participants (campaign_id, lead_id, email, status,
			current_step, opens, replies, last_activity_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (campaign_id, lead_id) DO UPDATE SET
			email = EXCLUDED.email,
			status = EXCLUDED.status,
			current_step = EXCLUDED.current_step,
			opens = EXCLUDED.opens,
			replies = EXCLUDED.replies,
			last_activity_at = EXCLUDED.last_activity_at,
			updated_at = EXCLUDED.updated_at`,
		p.CampaignID, p.LeadID, p.Email, p.Status, p.CurrentStep, p.Opens, p.Replies,
		p.LastActivityAt, p.UpdatedAt,
	)
	if err != nil {
		return domain.NewStorageError(err)
	}

	return nil
}
