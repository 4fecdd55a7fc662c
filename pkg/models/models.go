package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// CreateLeadRequest represents a lead capture request
type CreateLeadRequest struct {
	Name        string `json:"name" validate:"required,min=2"`
	Email       string `json:"email" validate:"omitempty,email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	LinkedinURL string `json:"linkedin_url" validate:"omitempty,url"`
	CompanyID   string `json:"company_id"`
}

// LeadResponse represents a single lead in API responses
type LeadResponse struct {
	ID               string         `json:"id"`
	Name             string         `json:"name"`
	Email            string         `json:"email,omitempty"`
	FirstName        string         `json:"first_name,omitempty"`
	LastName         string         `json:"last_name,omitempty"`
	LinkedinURL      string         `json:"linkedin_url,omitempty"`
	CompanyID        string         `json:"company_id,omitempty"`
	EnrichmentStatus string         `json:"enrichment_status"`
	Likelihood       *float64       `json:"likelihood,omitempty"`
	EnrichedData     map[string]any `json:"enriched_data,omitempty"`
	CreatedAt        string         `json:"created_at"`
}

// BatchTriggerRequest represents a batch enrichment trigger request
type BatchTriggerRequest struct {
	LeadIDs       []string `json:"lead_ids" validate:"omitempty,max=100,dive,required"`
	ForceReEnrich bool     `json:"forceReEnrich"`
}

// BatchTriggerResponse is the synchronous summary of a batch trigger run.
// It reports delivery attempts, not eventual enrichment outcomes.
type BatchTriggerResponse struct {
	Message   string `json:"message"`
	Triggered int    `json:"triggered"`
	Failed    int    `json:"failed"`
	Total     int    `json:"total"`
}

// EnrichLeadResponse is the response for the inbound enrichment callback
type EnrichLeadResponse struct {
	Success      bool           `json:"success"`
	Message      string         `json:"message"`
	Likelihood   *float64       `json:"likelihood,omitempty"`
	EnrichedData map[string]any `json:"enriched_data,omitempty"`
}

// SyncLeadRequest represents a single-lead campaign sync request
type SyncLeadRequest struct {
	CampaignID string `json:"campaignId" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
}

// SyncLeadResponse is the engagement snapshot returned by a single-lead sync
type SyncLeadResponse struct {
	Updated        bool   `json:"updated"`
	Email          string `json:"email"`
	Status         string `json:"status"`
	CurrentStep    int    `json:"current_step"`
	Opens          int    `json:"opens"`
	Replies        int    `json:"replies"`
	LastActivityAt string `json:"last_activity_at,omitempty"`
}

// SyncCampaignResponse summarises a campaign-level sync run
type SyncCampaignResponse struct {
	Success     bool     `json:"success"`
	SyncedCount int      `json:"syncedCount"`
	FailedCount int      `json:"failedCount"`
	Errors      []string `json:"errors"`
}

// EnrichmentStats represents statistics about lead enrichment status
type EnrichmentStats struct {
	TotalLeads     int     `json:"total_leads"`
	NotStarted     int     `json:"not_started"`
	Pending        int     `json:"pending"`
	Completed      int     `json:"completed"`
	Failed         int     `json:"failed"`
	EnrichmentRate float64 `json:"enrichment_rate"` // Percentage
}
