package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/empowrhq/leadflow/pkg/api/errors"
	"github.com/empowrhq/leadflow/pkg/lemlist"
	"github.com/empowrhq/leadflow/pkg/models"
)

// SyncHandler handles campaign provider sync endpoints
type SyncHandler struct {
	sync *lemlist.SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(sync *lemlist.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// SyncCampaign reconciles every participant of one lemlist campaign
func (h *SyncHandler) SyncCampaign(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Minute)
	defer cancel()

	campaignID := c.Param("campaignId")
	if campaignID == "" {
		return apierrors.ValidationError(c, fmt.Errorf("campaignId is required"))
	}

	userID, ok := c.Get("user_id").(int)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing session")
	}

	resp, err := h.sync.SyncCampaign(ctx, userID, campaignID)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// SyncLead pulls one participant's engagement snapshot from lemlist
func (h *SyncHandler) SyncLead(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	var req models.SyncLeadRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	userID, ok := c.Get("user_id").(int)
	if !ok {
		return apierrors.UnauthorizedError(c, "missing session")
	}

	resp, err := h.sync.SyncLead(ctx, userID, req.CampaignID, req.Email)
	if err != nil {
		return apierrors.FromDomain(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}
