package lemlist

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/empowrhq/leadflow/pkg/domain"
)

// DefaultBaseURL is the production lemlist API endpoint
const DefaultBaseURL = "https://api.lemlist.com/api"

// CampaignLead is one participant row as reported by lemlist
type CampaignLead struct {
	ID             string     `json:"_id"`
	Email          string     `json:"email"`
	Status         string     `json:"status"`
	CurrentStep    int        `json:"currentStep"`
	Opens          int        `json:"opens"`
	Replies        int        `json:"replies"`
	LastActivityAt *time.Time `json:"lastActivityAt"`
}

// Client is the lemlist API surface the sync service depends on
type Client interface {
	GetCampaignLeads(ctx context.Context, apiKey, campaignID string) ([]CampaignLead, error)
	GetLeadActivity(ctx context.Context, apiKey, campaignID, email string) (*CampaignLead, error)
}

// APIClient talks to the lemlist REST API. Authentication is HTTP basic with
// an empty username and the API key as password, per lemlist convention.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new lemlist API client
func NewAPIClient(baseURL string) *APIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetCampaignLeads lists every participant of a campaign
func (c *APIClient) GetCampaignLeads(ctx context.Context, apiKey, campaignID string) ([]CampaignLead, error) {
	endpoint := fmt.Sprintf("%s/campaigns/%s/leads", c.baseURL, url.PathEscape(campaignID))

	var leads []CampaignLead
	if err := c.get(ctx, apiKey, endpoint, &leads); err != nil {
		return nil, err
	}

	return leads, nil
}

// GetLeadActivity fetches one participant's engagement snapshot
func (c *APIClient) GetLeadActivity(ctx context.Context, apiKey, campaignID, email string) (*CampaignLead, error) {
	endpoint := fmt.Sprintf("%s/campaigns/%s/leads/%s", c.baseURL, url.PathEscape(campaignID), url.PathEscape(email))

	var lead CampaignLead
	if err := c.get(ctx, apiKey, endpoint, &lead); err != nil {
		return nil, err
	}

	return &lead, nil
}

func (c *APIClient) get(ctx context.Context, apiKey, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.NewProviderError("lemlist", err)
	}

	req.SetBasicAuth("", apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewProviderError("lemlist", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.NewUnauthorizedError("lemlist rejected the API key")
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewNotFoundError("lemlist resource")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return domain.NewProviderError("lemlist", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewProviderError("lemlist", fmt.Errorf("malformed response: %w", err))
	}

	return nil
}
