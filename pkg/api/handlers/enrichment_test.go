package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empowrhq/leadflow/pkg/domain"
	"github.com/empowrhq/leadflow/pkg/enrichment"
	"github.com/empowrhq/leadflow/pkg/models"
	"github.com/empowrhq/leadflow/pkg/webhook"
)

type recordingTrigger struct {
	payloads []webhook.TriggerPayload
	failAll  bool
}

func (t *recordingTrigger) Trigger(ctx context.Context, payload webhook.TriggerPayload) error {
	if t.failAll {
		return domain.NewWebhookDeliveryError(502, "upstream down")
	}
	t.payloads = append(t.payloads, payload)
	return nil
}

func newEnrichmentHandler(leads *memLeadStore, companies *memCompanyStore, trigger *recordingTrigger, secret string) *EnrichmentHandler {
	writer := enrichment.NewWriter(leads, companies, nil, nil)
	orchestrator := enrichment.NewOrchestrator(leads, companies, trigger, 1000, 50, nil)
	return NewEnrichmentHandler(writer, orchestrator, leads, nil, secret)
}

func postJSON(e *echo.Echo, path, body string) (*httptest.ResponseRecorder, echo.Context) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func TestEnrichLead(t *testing.T) {
	t.Run("stores enrichment and returns snapshot", func(t *testing.T) {
		e := newTestEchoWithValidator()
		leads := newMemLeadStore(&domain.Lead{ID: "lead-1", CompanyID: "co-1", EnrichmentStatus: domain.EnrichmentPending})
		companies := newMemCompanyStore(&domain.Company{ID: "co-1"})
		h := newEnrichmentHandler(leads, companies, &recordingTrigger{}, "")

		rec, c := postJSON(e, "/api/v1/enrich-lead", `{"lead_id":"lead-1","company_domain":"acme.com","likelihood":0.9,"ceo_name":"Jane"}`)
		require.NoError(t, h.EnrichLead(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.EnrichLeadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.NotNil(t, resp.Likelihood)
		assert.InDelta(t, 0.9, *resp.Likelihood, 0.0001)
		assert.Equal(t, "Jane", resp.EnrichedData["ceo_name"])

		assert.Equal(t, domain.EnrichmentCompleted, leads.leads["lead-1"].EnrichmentStatus)
		assert.Equal(t, "acme.com", companies.companies["co-1"].Domain)
	})

	t.Run("unknown lead returns 404", func(t *testing.T) {
		e := newTestEchoWithValidator()
		h := newEnrichmentHandler(newMemLeadStore(), newMemCompanyStore(), &recordingTrigger{}, "")

		rec, c := postJSON(e, "/api/v1/enrich-lead", `{"lead_id":"ghost"}`)
		require.NoError(t, h.EnrichLead(c))
		require.Equal(t, http.StatusNotFound, rec.Code)

		var resp models.EnrichLeadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Message, "ghost")
	})

	t.Run("missing lead_id returns 400", func(t *testing.T) {
		e := newTestEchoWithValidator()
		h := newEnrichmentHandler(newMemLeadStore(), newMemCompanyStore(), &recordingTrigger{}, "")

		rec, c := postJSON(e, "/api/v1/enrich-lead", `{"company_domain":"acme.com"}`)
		require.NoError(t, h.EnrichLead(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		e := newTestEchoWithValidator()
		h := newEnrichmentHandler(newMemLeadStore(), newMemCompanyStore(), &recordingTrigger{}, "")

		rec, c := postJSON(e, "/api/v1/enrich-lead", `{not json`)
		require.NoError(t, h.EnrichLead(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("storage failure returns 500", func(t *testing.T) {
		e := newTestEchoWithValidator()
		leads := newMemLeadStore(&domain.Lead{ID: "lead-1", EnrichmentStatus: domain.EnrichmentPending})
		leads.fail = true
		h := newEnrichmentHandler(leads, newMemCompanyStore(), &recordingTrigger{}, "")

		rec, c := postJSON(e, "/api/v1/enrich-lead", `{"lead_id":"lead-1"}`)
		require.NoError(t, h.EnrichLead(c))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("valid signature accepted", func(t *testing.T) {
		e := newTestEchoWithValidator()
		leads := newMemLeadStore(&domain.Lead{ID: "lead-1", EnrichmentStatus: domain.EnrichmentPending})
		h := newEnrichmentHandler(leads, newMemCompanyStore(), &recordingTrigger{}, "shared-secret")

		body := `{"lead_id":"lead-1"}`
		rec, c := postJSON(e, "/api/v1/enrich-lead", body)
		c.Request().Header.Set("x-webhook-signature", webhook.Signature([]byte(body), "shared-secret"))

		require.NoError(t, h.EnrichLead(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing signature rejected when secret configured", func(t *testing.T) {
		e := newTestEchoWithValidator()
		leads := newMemLeadStore(&domain.Lead{ID: "lead-1", EnrichmentStatus: domain.EnrichmentPending})
		h := newEnrichmentHandler(leads, newMemCompanyStore(), &recordingTrigger{}, "shared-secret")

		rec, c := postJSON(e, "/api/v1/enrich-lead", `{"lead_id":"lead-1"}`)

		require.NoError(t, h.EnrichLead(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, domain.EnrichmentPending, leads.leads["lead-1"].EnrichmentStatus)
	})

	t.Run("bad signature rejected", func(t *testing.T) {
		e := newTestEchoWithValidator()
		leads := newMemLeadStore(&domain.Lead{ID: "lead-1", EnrichmentStatus: domain.EnrichmentPending})
		h := newEnrichmentHandler(leads, newMemCompanyStore(), &recordingTrigger{}, "shared-secret")

		rec, c := postJSON(e, "/api/v1/enrich-lead", `{"lead_id":"lead-1"}`)
		c.Request().Header.Set("x-webhook-signature", "deadbeef")

		require.NoError(t, h.EnrichLead(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, domain.EnrichmentPending, leads.leads["lead-1"].EnrichmentStatus)
	})
}

func TestTriggerBatch(t *testing.T) {
	t.Run("returns delivery tally", func(t *testing.T) {
		e := newTestEchoWithValidator()
		leads := newMemLeadStore(
			&domain.Lead{ID: "lead-1", EnrichmentStatus: domain.EnrichmentNotStarted},
			&domain.Lead{ID: "lead-2", EnrichmentStatus: domain.EnrichmentNotStarted},
		)
		trigger := &recordingTrigger{}
		h := newEnrichmentHandler(leads, newMemCompanyStore(), trigger, "")

		rec, c := postJSON(e, "/api/v1/trigger-enrichment-batch", `{"lead_ids":["lead-1","lead-2","ghost"]}`)
		require.NoError(t, h.TriggerBatch(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.BatchTriggerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Triggered)
		assert.Equal(t, 1, resp.Failed)
		assert.Equal(t, 3, resp.Total)
		assert.NotEmpty(t, resp.Message)
	})

	t.Run("empty body sweeps not started leads", func(t *testing.T) {
		e := newTestEchoWithValidator()
		leads := newMemLeadStore(&domain.Lead{ID: "lead-1", EnrichmentStatus: domain.EnrichmentNotStarted})
		trigger := &recordingTrigger{}
		h := newEnrichmentHandler(leads, newMemCompanyStore(), trigger, "")

		rec, c := postJSON(e, "/api/v1/trigger-enrichment-batch", `{}`)
		require.NoError(t, h.TriggerBatch(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var resp models.BatchTriggerResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Triggered)
		assert.Len(t, trigger.payloads, 1)
	})
}

func TestStats(t *testing.T) {
	e := newTestEchoWithValidator()
	leads := newMemLeadStore(
		&domain.Lead{ID: "a", EnrichmentStatus: domain.EnrichmentCompleted},
		&domain.Lead{ID: "b", EnrichmentStatus: domain.EnrichmentCompleted},
		&domain.Lead{ID: "c", EnrichmentStatus: domain.EnrichmentPending},
		&domain.Lead{ID: "d", EnrichmentStatus: domain.EnrichmentNotStarted},
	)
	h := newEnrichmentHandler(leads, newMemCompanyStore(), &recordingTrigger{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/enrichment/stats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, h.Stats(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats models.EnrichmentStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 4, stats.TotalLeads)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.NotStarted)
	assert.InDelta(t, 50.0, stats.EnrichmentRate, 0.0001)
}
