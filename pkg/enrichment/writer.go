package enrichment

import (
	"context"
	"strconv"
	"strings"

	"github.com/empowrhq/leadflow/pkg/domain"
	"github.com/empowrhq/leadflow/pkg/logger"
)

// LikelihoodScorer estimates how likely a contact is a decision maker.
// Implemented by the LLM scorer; nil disables scoring.
type LikelihoodScorer interface {
	Score(ctx context.Context, jobTitle, industry string) (float64, error)
}

// StoreRecorder receives stored-enrichment counters for metrics. Nil disables
// recording.
type StoreRecorder interface {
	RecordEnrichmentStored(status string)
}

// StoreResult is the outcome of persisting one enrichment payload
type StoreResult struct {
	Status       string
	Likelihood   *float64
	EnrichedData map[string]any
}

// Writer persists enrichment results delivered by the automation platform.
// It owns the pending -> completed|failed status transition.
type Writer struct {
	leads     domain.LeadStore
	companies domain.CompanyStore
	scorer    LikelihoodScorer
	recorder  StoreRecorder
	log       logger.Logger
}

// NewWriter creates a new enrichment writer
func NewWriter(leads domain.LeadStore, companies domain.CompanyStore, scorer LikelihoodScorer, log logger.Logger) *Writer {
	if log == nil {
		log = logger.Default()
	}
	return &Writer{
		leads:     leads,
		companies: companies,
		scorer:    scorer,
		log:       log,
	}
}

// SetRecorder attaches a metrics recorder
func (w *Writer) SetRecorder(r StoreRecorder) {
	w.recorder = r
}

// StoreEnrichment maps a vendor payload onto the canonical schema and writes
// it back onto the lead. The target lead must already exist; nothing is
// created here. Writing the same payload twice yields the same stored state.
func (w *Writer) StoreEnrichment(ctx context.Context, leadID string, payload map[string]any) (*StoreResult, error) {
	lead, err := w.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	mapped := MapVendorPayload(payload)

	if vendorReportedFailure(payload) {
		if err := w.leads.SaveEnrichmentResult(ctx, lead.ID, domain.EnrichmentFailed, nil, mapped.Leftover); err != nil {
			return nil, err
		}
		w.recordStored(domain.EnrichmentFailed)
		w.log.Warn("enrichment failed upstream", "lead_id", lead.ID, "error", stringValue(payload["error"]))
		return &StoreResult{Status: domain.EnrichmentFailed, EnrichedData: mapped.Leftover}, nil
	}

	likelihood := extractLikelihood(payload)
	if likelihood == nil && w.scorer != nil {
		likelihood = w.scoreLikelihood(ctx, mapped)
	}

	// Canonical company fields only land when the lead is attached to a
	// company; person-level payloads stay in enriched_data
	if lead.CompanyID != "" && len(mapped.Canonical) > 0 {
		if err := w.upsertCompany(ctx, lead.CompanyID, mapped.Canonical); err != nil {
			return nil, err
		}
	}

	if err := w.leads.SaveEnrichmentResult(ctx, lead.ID, domain.EnrichmentCompleted, likelihood, mapped.Leftover); err != nil {
		return nil, err
	}

	w.recordStored(domain.EnrichmentCompleted)
	w.log.Info("enrichment stored", "lead_id", lead.ID, "canonical_fields", len(mapped.Canonical), "leftover_fields", len(mapped.Leftover))

	return &StoreResult{
		Status:       domain.EnrichmentCompleted,
		Likelihood:   likelihood,
		EnrichedData: mapped.Leftover,
	}, nil
}

func (w *Writer) upsertCompany(ctx context.Context, companyID string, canonical map[string]string) error {
	company := &domain.Company{
		ID:          companyID,
		Name:        canonical["name"],
		Domain:      canonical["domain"],
		LinkedinURL: canonical["linkedin_url"],
		HeadOffice:  canonical["head_office"],
		CompanySize: canonical["company_size"],
		Industry:    canonical["industry"],
		Website:     canonical["website"],
		LogoURL:     canonical["logo_url"],
	}

	return w.companies.Upsert(ctx, company)
}

// scoreLikelihood asks the LLM for a decision-maker estimate when the vendor
// payload carries a job title. Scoring failures are logged and skipped, the
// enrichment itself still lands.
func (w *Writer) scoreLikelihood(ctx context.Context, mapped *MappedPayload) *float64 {
	title := jobTitle(mapped.Leftover)
	if title == "" {
		return nil
	}

	score, err := w.scorer.Score(ctx, title, mapped.Canonical["industry"])
	if err != nil {
		w.log.Warn("likelihood scoring failed", "error", err)
		return nil
	}

	return &score
}

func (w *Writer) recordStored(status string) {
	if w.recorder != nil {
		w.recorder.RecordEnrichmentStored(status)
	}
}

func vendorReportedFailure(payload map[string]any) bool {
	if msg := stringValue(payload["error"]); msg != "" {
		return true
	}
	return strings.EqualFold(stringValue(payload["status"]), domain.EnrichmentFailed)
}

// extractLikelihood reads the vendor confidence score, accepting both
// numeric and string-encoded values
func extractLikelihood(payload map[string]any) *float64 {
	for _, key := range []string{"likelihood", "confidence"} {
		switch value := payload[key].(type) {
		case float64:
			return &value
		case string:
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				return &parsed
			}
		}
	}
	return nil
}

func jobTitle(fields map[string]any) string {
	for key, value := range fields {
		switch strings.ToLower(key) {
		case "title", "job_title", "position", "role":
			if v := stringValue(value); v != "" {
				return v
			}
		}
	}
	return ""
}
