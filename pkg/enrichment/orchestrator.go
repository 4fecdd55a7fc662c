package enrichment

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/empowrhq/leadflow/pkg/domain"
	"github.com/empowrhq/leadflow/pkg/logger"
	"github.com/empowrhq/leadflow/pkg/models"
	"github.com/empowrhq/leadflow/pkg/webhook"
)

// Recorder receives batch counters for metrics. Nil disables recording.
type Recorder interface {
	EnrichmentTriggered()
	EnrichmentFailed()
}

// Orchestrator fans out enrichment trigger webhooks for a batch of leads.
// It never waits for enrichment completion: a successful delivery moves the
// lead to pending and the result arrives later through the inbound callback.
type Orchestrator struct {
	leads     domain.LeadStore
	companies domain.CompanyStore
	trigger   webhook.Trigger
	limiter   *rate.Limiter
	maxBatch  int
	recorder  Recorder
	log       logger.Logger
}

// NewOrchestrator creates a new batch trigger orchestrator. triggersPerSec
// paces outbound webhooks, maxBatch caps how many not_started leads a single
// unbounded batch may select.
func NewOrchestrator(leads domain.LeadStore, companies domain.CompanyStore, trigger webhook.Trigger, triggersPerSec float64, maxBatch int, log logger.Logger) *Orchestrator {
	if triggersPerSec <= 0 {
		triggersPerSec = 1
	}
	if maxBatch <= 0 {
		maxBatch = 50
	}
	if log == nil {
		log = logger.Default()
	}

	return &Orchestrator{
		leads:     leads,
		companies: companies,
		trigger:   trigger,
		limiter:   rate.NewLimiter(rate.Limit(triggersPerSec), 1),
		maxBatch:  maxBatch,
		log:       log,
	}
}

// SetRecorder attaches a metrics recorder
func (o *Orchestrator) SetRecorder(r Recorder) {
	o.recorder = r
}

// TriggerBatch selects leads and fires one enrichment webhook per lead,
// returning a synchronous tally. With explicit IDs the total always matches
// the requested count and unknown IDs count as failed; completed leads are
// skipped unless ForceReEnrich is set. Without IDs it picks up to maxBatch
// not_started leads.
func (o *Orchestrator) TriggerBatch(ctx context.Context, req models.BatchTriggerRequest) (*models.BatchTriggerResponse, error) {
	var candidates []*domain.Lead
	var total int

	if len(req.LeadIDs) > 0 {
		total = len(req.LeadIDs)

		found, err := o.leads.ListByIDs(ctx, req.LeadIDs)
		if err != nil {
			return nil, err
		}

		byID := make(map[string]*domain.Lead, len(found))
		for _, lead := range found {
			byID[lead.ID] = lead
		}

		missing := 0
		for _, id := range req.LeadIDs {
			lead, ok := byID[id]
			if !ok {
				o.log.Warn("batch trigger skipping unknown lead", "lead_id", id)
				missing++
				continue
			}
			if lead.EnrichmentStatus == domain.EnrichmentCompleted && !req.ForceReEnrich {
				continue
			}
			candidates = append(candidates, lead)
		}

		resp := o.fanOut(ctx, candidates, total)
		resp.Failed += missing
		for i := 0; i < missing; i++ {
			o.recordFailed()
		}
		resp.Message = batchMessage(resp)
		return resp, nil
	}

	candidates, err := o.leads.ListByEnrichmentStatus(ctx, domain.EnrichmentNotStarted, o.maxBatch)
	if err != nil {
		return nil, err
	}
	total = len(candidates)

	resp := o.fanOut(ctx, candidates, total)
	resp.Message = batchMessage(resp)
	return resp, nil
}

// fanOut triggers the webhook for each candidate, paced by the limiter.
// A cancelled context fails the remaining leads instead of blocking.
func (o *Orchestrator) fanOut(ctx context.Context, candidates []*domain.Lead, total int) *models.BatchTriggerResponse {
	resp := &models.BatchTriggerResponse{Total: total}

	for i, lead := range candidates {
		if err := o.limiter.Wait(ctx); err != nil {
			remaining := len(candidates) - i
			o.log.Warn("batch trigger interrupted", "remaining", remaining, "error", err)
			resp.Failed += remaining
			for j := 0; j < remaining; j++ {
				o.recordFailed()
			}
			break
		}

		if err := o.trigger.Trigger(ctx, o.buildPayload(ctx, lead)); err != nil {
			o.log.Warn("enrichment trigger failed", "lead_id", lead.ID, "error", err)
			resp.Failed++
			o.recordFailed()
			continue
		}

		if err := o.leads.UpdateEnrichmentStatus(ctx, lead.ID, domain.EnrichmentPending); err != nil {
			// Webhook already delivered, the status catches up on callback
			o.log.Warn("failed to mark lead pending", "lead_id", lead.ID, "error", err)
		}

		resp.Triggered++
		if o.recorder != nil {
			o.recorder.EnrichmentTriggered()
		}
	}

	return resp
}

func (o *Orchestrator) buildPayload(ctx context.Context, lead *domain.Lead) webhook.TriggerPayload {
	payload := webhook.TriggerPayload{
		LeadID:      lead.ID,
		Email:       lead.Email,
		FirstName:   lead.FirstName,
		LastName:    lead.LastName,
		LinkedinURL: lead.LinkedinURL,
	}

	if lead.CompanyID != "" {
		if company, err := o.companies.GetByID(ctx, lead.CompanyID); err == nil {
			payload.Company = company.Name
		}
	}

	return payload
}

func (o *Orchestrator) recordFailed() {
	if o.recorder != nil {
		o.recorder.EnrichmentFailed()
	}
}

func batchMessage(resp *models.BatchTriggerResponse) string {
	return fmt.Sprintf("Enrichment triggered for %d of %d leads (%d failed)", resp.Triggered, resp.Total, resp.Failed)
}
