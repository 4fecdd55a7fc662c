package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/empowrhq/leadflow/pkg/api/errors"
	"github.com/empowrhq/leadflow/pkg/domain"
	"github.com/empowrhq/leadflow/pkg/models"
)

// LeadsHandler handles lead capture and lookup endpoints
type LeadsHandler struct {
	leads domain.LeadStore
}

// NewLeadsHandler creates a new leads handler
func NewLeadsHandler(leads domain.LeadStore) *LeadsHandler {
	return &LeadsHandler{leads: leads}
}

// Create captures a new lead. Enrichment starts separately through the
// batch trigger endpoint or the refresh poller.
func (h *LeadsHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	lead := &domain.Lead{
		ID:               newID(),
		Name:             req.Name,
		Email:            req.Email,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		LinkedinURL:      req.LinkedinURL,
		CompanyID:        req.CompanyID,
		EnrichmentStatus: domain.EnrichmentNotStarted,
	}

	if err := h.leads.Create(ctx, lead); err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusCreated, leadResponse(lead))
}

// GetByID returns a single lead with its enrichment state
func (h *LeadsHandler) GetByID(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	lead, err := h.leads.GetByID(ctx, c.Param("id"))
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, leadResponse(lead))
}

func leadResponse(lead *domain.Lead) models.LeadResponse {
	return models.LeadResponse{
		ID:               lead.ID,
		Name:             lead.Name,
		Email:            lead.Email,
		FirstName:        lead.FirstName,
		LastName:         lead.LastName,
		LinkedinURL:      lead.LinkedinURL,
		CompanyID:        lead.CompanyID,
		EnrichmentStatus: lead.EnrichmentStatus,
		Likelihood:       lead.Likelihood,
		EnrichedData:     lead.EnrichedData,
		CreatedAt:        lead.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// newID returns a random 128-bit hex identifier
func newID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
