package lemlist

import (
	"context"
	"fmt"
	"time"

	"github.com/empowrhq/leadflow/pkg/domain"
	"github.com/empowrhq/leadflow/pkg/logger"
	"github.com/empowrhq/leadflow/pkg/models"
)

// Provider is the key under which lemlist credentials are stored
const Provider = "lemlist"

// providerStatusMap normalizes lemlist participant statuses onto the local
// lifecycle. Unknown statuses default to active.
var providerStatusMap = map[string]string{
	"running":       domain.ParticipantActive,
	"active":        domain.ParticipantActive,
	"contacted":     domain.ParticipantActive,
	"done":          domain.ParticipantCompleted,
	"completed":     domain.ParticipantCompleted,
	"interested":    domain.ParticipantCompleted,
	"paused":        domain.ParticipantPaused,
	"notinterested": domain.ParticipantPaused,
	"bounced":       domain.ParticipantBounced,
	"unsubscribed":  domain.ParticipantUnsubscribed,
}

// SyncRecorder receives per-lead sync counters for metrics. Nil disables
// recording.
type SyncRecorder interface {
	RecordLeadSynced(success bool)
}

// SyncService reconciles lemlist campaign activity into local lead and
// participant state.
type SyncService struct {
	client      Client
	leads       domain.LeadStore
	campaigns   domain.CampaignStore
	connections domain.ConnectionStore
	recorder    SyncRecorder
	log         logger.Logger
}

// NewSyncService creates a new lemlist sync service
func NewSyncService(client Client, leads domain.LeadStore, campaigns domain.CampaignStore, connections domain.ConnectionStore, log logger.Logger) *SyncService {
	if log == nil {
		log = logger.Default()
	}
	return &SyncService{
		client:      client,
		leads:       leads,
		campaigns:   campaigns,
		connections: connections,
		log:         log,
	}
}

// SetRecorder attaches a metrics recorder
func (s *SyncService) SetRecorder(r SyncRecorder) {
	s.recorder = r
}

// SyncLead pulls one participant's engagement from lemlist and writes it
// onto the matching local lead. The caller must have a stored lemlist
// connection; without one the sync is unauthorized.
func (s *SyncService) SyncLead(ctx context.Context, userID int, campaignID, email string) (*models.SyncLeadResponse, error) {
	conn, err := s.credentials(ctx, userID)
	if err != nil {
		return nil, err
	}

	activity, err := s.client.GetLeadActivity(ctx, conn.APIKey, campaignID, email)
	if err != nil {
		return nil, err
	}

	campaign, err := s.ensureCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}

	return s.applyActivity(ctx, campaign, activity)
}

// SyncCampaign reconciles every participant of a lemlist campaign. Individual
// participant failures are collected, never fatal: the provider list drives
// the loop and each row stands alone.
func (s *SyncService) SyncCampaign(ctx context.Context, userID int, campaignID string) (*models.SyncCampaignResponse, error) {
	conn, err := s.credentials(ctx, userID)
	if err != nil {
		return nil, err
	}

	participants, err := s.client.GetCampaignLeads(ctx, conn.APIKey, campaignID)
	if err != nil {
		return nil, err
	}

	campaign, err := s.ensureCampaign(ctx, userID, campaignID)
	if err != nil {
		return nil, err
	}

	resp := &models.SyncCampaignResponse{Errors: []string{}}
	for i := range participants {
		if _, err := s.applyActivity(ctx, campaign, &participants[i]); err != nil {
			resp.FailedCount++
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", participants[i].Email, err))
			continue
		}
		resp.SyncedCount++
	}
	resp.Success = resp.FailedCount == 0

	s.log.Info("campaign sync finished", "campaign_id", campaignID, "synced", resp.SyncedCount, "failed", resp.FailedCount)

	return resp, nil
}

// credentials loads the user's lemlist API key. A missing connection is an
// authorization failure, not a lookup miss.
func (s *SyncService) credentials(ctx context.Context, userID int) (*domain.Connection, error) {
	conn, err := s.connections.Get(ctx, userID, Provider)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("no lemlist connection for this user")
		}
		return nil, err
	}
	return conn, nil
}

// ensureCampaign resolves the local campaign row, creating it on first sync
func (s *SyncService) ensureCampaign(ctx context.Context, userID int, providerCampaignID string) (*domain.Campaign, error) {
	campaign, err := s.campaigns.GetByProviderID(ctx, userID, providerCampaignID)
	if err == nil {
		return campaign, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	campaign = &domain.Campaign{
		ID:                 providerCampaignID,
		UserID:             userID,
		ProviderCampaignID: providerCampaignID,
	}
	if err := s.campaigns.Upsert(ctx, campaign); err != nil {
		return nil, err
	}

	return campaign, nil
}

// applyActivity writes one provider snapshot onto the matching local lead
// and its participant row.
func (s *SyncService) applyActivity(ctx context.Context, campaign *domain.Campaign, activity *CampaignLead) (*models.SyncLeadResponse, error) {
	lead, err := s.leads.GetByEmail(ctx, activity.Email)
	if err != nil {
		s.recordSynced(false)
		if domain.IsNotFound(err) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("lead %s", activity.Email))
		}
		return nil, err
	}

	status := mapStatus(activity.Status)

	participant := &domain.Participant{
		CampaignID:     campaign.ID,
		LeadID:         lead.ID,
		Email:          activity.Email,
		Status:         status,
		CurrentStep:    activity.CurrentStep,
		Opens:          activity.Opens,
		Replies:        activity.Replies,
		LastActivityAt: activity.LastActivityAt,
	}

	if err := s.campaigns.UpsertParticipant(ctx, participant); err != nil {
		s.recordSynced(false)
		return nil, err
	}
	s.recordSynced(true)

	resp := &models.SyncLeadResponse{
		Updated:     true,
		Email:       activity.Email,
		Status:      status,
		CurrentStep: activity.CurrentStep,
		Opens:       activity.Opens,
		Replies:     activity.Replies,
	}
	if activity.LastActivityAt != nil {
		resp.LastActivityAt = activity.LastActivityAt.UTC().Format(time.RFC3339)
	}

	return resp, nil
}

func (s *SyncService) recordSynced(success bool) {
	if s.recorder != nil {
		s.recorder.RecordLeadSynced(success)
	}
}

func mapStatus(providerStatus string) string {
	if status, ok := providerStatusMap[normalize(providerStatus)]; ok {
		return status
	}
	return domain.ParticipantActive
}

func normalize(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if r == ' ' || r == '_' || r == '-' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
