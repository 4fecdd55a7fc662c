package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/empowrhq/leadflow/pkg/domain"
)

// TriggerPayload carries lead identity to the enrichment automation endpoint.
// Only LeadID is required; the other fields are passed through verbatim.
type TriggerPayload struct {
	LeadID      string `json:"lead_id"`
	Company     string `json:"company,omitempty"`
	Email       string `json:"email,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	LinkedinURL string `json:"linkedin_url,omitempty"`
}

// Trigger is the outbound enrichment trigger contract. The orchestrator and
// tests depend on this interface rather than the HTTP client.
type Trigger interface {
	Trigger(ctx context.Context, payload TriggerPayload) error
}

// Client delivers enrichment trigger webhooks to the configured automation
// endpoint. Delivery is at-most-once per call: retries are the caller's
// responsibility.
type Client struct {
	url        string
	secret     string
	httpClient *http.Client
}

// NewClient creates a new webhook client
func NewClient(url, secret string) *Client {
	return &Client{
		url:    url,
		secret: secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Trigger fires one enrichment webhook for the given lead. The request body
// is signed with an HMAC-SHA256 signature header so the automation platform
// can verify the origin. The enrichment result arrives later through the
// inbound callback, never on this response.
func (c *Client) Trigger(ctx context.Context, payload TriggerPayload) error {
	if payload.LeadID == "" {
		return domain.NewValidationError("lead_id is required")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to marshal webhook payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.NewInternalError(fmt.Errorf("failed to create webhook request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-webhook-signature", Signature(body, c.secret))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewWebhookDeliveryError(0, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Responses are small status messages; cap the read anyway
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.NewWebhookDeliveryError(resp.StatusCode, string(respBody))
	}

	return nil
}

// Signature computes the hex-encoded HMAC-SHA256 signature for a payload
func Signature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies the HMAC signature of a webhook payload
func VerifySignature(payload []byte, signature string, secret string) bool {
	expected := Signature(payload, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}
