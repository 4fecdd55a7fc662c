package domain

import "time"

// Enrichment status lifecycle for a lead. Transitions:
// not_started -> pending (webhook trigger delivered)
// pending -> completed | failed (asynchronous result written back)
const (
	EnrichmentNotStarted = "not_started"
	EnrichmentPending    = "pending"
	EnrichmentCompleted  = "completed"
	EnrichmentFailed     = "failed"
)

// Campaign participant statuses mirrored from the outbound-sequencing provider
const (
	ParticipantActive       = "active"
	ParticipantCompleted    = "completed"
	ParticipantPaused       = "paused"
	ParticipantBounced      = "bounced"
	ParticipantUnsubscribed = "unsubscribed"
)

// Lead is a person record tracked through the outreach pipeline
type Lead struct {
	ID               string
	Name             string
	Email            string
	FirstName        string
	LastName         string
	LinkedinURL      string
	CompanyID        string
	EnrichmentStatus string
	Likelihood       *float64
	EnrichedData     map[string]any
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Company holds the canonical fields populated by enrichment
type Company struct {
	ID          string
	Name        string
	Domain      string
	LinkedinURL string
	HeadOffice  string
	CompanySize string
	Industry    string
	Website     string
	LogoURL     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Campaign is a local record of an outbound sequence on the provider side
type Campaign struct {
	ID                 string
	UserID             int
	ProviderCampaignID string
	Name               string
	CreatedAt          time.Time
}

// Participant tracks one lead's progress through one campaign
type Participant struct {
	CampaignID     string
	LeadID         string
	Email          string
	Status         string
	CurrentStep    int
	Opens          int
	Replies        int
	LastActivityAt *time.Time
	UpdatedAt      time.Time
}

// Engagement is the reconciled snapshot written onto a participant during sync
type Engagement struct {
	Status         string
	CurrentStep    int
	Opens          int
	Replies        int
	LastActivityAt *time.Time
}

// Connection stores a user's credential for an external provider
type Connection struct {
	UserID      int
	Provider    string
	APIKey      string
	ConnectedAt time.Time
}
