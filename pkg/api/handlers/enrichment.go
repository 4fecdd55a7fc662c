package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/empowrhq/leadflow/pkg/api/errors"
	"github.com/empowrhq/leadflow/pkg/domain"
	"github.com/empowrhq/leadflow/pkg/enrichment"
	"github.com/empowrhq/leadflow/pkg/models"
	"github.com/empowrhq/leadflow/pkg/webhook"
)

const statsCacheKey = "enrichment:stats"
const statsCacheTTL = 60 * time.Second

// EnrichmentHandler handles the inbound enrichment callback and batch triggers
type EnrichmentHandler struct {
	writer        *enrichment.Writer
	orchestrator  *enrichment.Orchestrator
	leads         domain.LeadStore
	cache         domain.CacheRepository
	webhookSecret string
}

// NewEnrichmentHandler creates a new enrichment handler
func NewEnrichmentHandler(writer *enrichment.Writer, orchestrator *enrichment.Orchestrator, leads domain.LeadStore, cache domain.CacheRepository, webhookSecret string) *EnrichmentHandler {
	return &EnrichmentHandler{
		writer:        writer,
		orchestrator:  orchestrator,
		leads:         leads,
		cache:         cache,
		webhookSecret: webhookSecret,
	}
}

// EnrichLead receives an enrichment result from the automation platform and
// persists it. The body is read raw so the signature covers the exact bytes
// the sender signed; when a secret is configured every request must carry a
// valid signature.
func (h *EnrichmentHandler) EnrichLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apierrors.ValidationError(c, err)
	}

	if h.webhookSecret != "" {
		signature := c.Request().Header.Get("x-webhook-signature")
		if signature == "" {
			return apierrors.UnauthorizedError(c, "missing webhook signature")
		}
		if !webhook.VerifySignature(body, signature, h.webhookSecret) {
			return apierrors.UnauthorizedError(c, "invalid webhook signature")
		}
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return apierrors.ValidationError(c, err)
	}

	leadID, _ := payload["lead_id"].(string)
	if leadID == "" {
		return apierrors.ValidationError(c, fmt.Errorf("lead_id is required"))
	}

	result, err := h.writer.StoreEnrichment(ctx, leadID, payload)
	if err != nil {
		// The automation platform keys off this body shape, not the
		// generic error envelope
		if domain.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, models.EnrichLeadResponse{
				Success: false,
				Message: fmt.Sprintf("Lead %s not found", leadID),
			})
		}
		return apierrors.FromDomain(c, err)
	}

	// Stored counts changed, drop the cached stats
	if h.cache != nil {
		_ = h.cache.Delete(ctx, statsCacheKey)
	}

	return c.JSON(http.StatusOK, models.EnrichLeadResponse{
		Success:      true,
		Message:      fmt.Sprintf("Enrichment stored for lead %s (%s)", leadID, result.Status),
		Likelihood:   result.Likelihood,
		EnrichedData: result.EnrichedData,
	})
}

// TriggerBatch fires enrichment webhooks for a set of leads and returns the
// delivery tally. The enrichment results themselves arrive asynchronously.
func (h *EnrichmentHandler) TriggerBatch(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Minute)
	defer cancel()

	var req models.BatchTriggerRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	resp, err := h.orchestrator.TriggerBatch(ctx, req)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// Stats reports enrichment status counts, cached for a minute
func (h *EnrichmentHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, statsCacheKey); err == nil && cached != "" {
			var stats models.EnrichmentStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return c.JSON(http.StatusOK, stats)
			}
		}
	}

	counts, err := h.leads.CountByEnrichmentStatus(ctx)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	stats := models.EnrichmentStats{
		NotStarted: counts[domain.EnrichmentNotStarted],
		Pending:    counts[domain.EnrichmentPending],
		Completed:  counts[domain.EnrichmentCompleted],
		Failed:     counts[domain.EnrichmentFailed],
	}
	stats.TotalLeads = stats.NotStarted + stats.Pending + stats.Completed + stats.Failed
	if stats.TotalLeads > 0 {
		stats.EnrichmentRate = float64(stats.Completed) / float64(stats.TotalLeads) * 100
	}

	if h.cache != nil {
		if encoded, err := json.Marshal(stats); err == nil {
			_ = h.cache.Set(ctx, statsCacheKey, string(encoded), statsCacheTTL)
		}
	}

	return c.JSON(http.StatusOK, stats)
}
