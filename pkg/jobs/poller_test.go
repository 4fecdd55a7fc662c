package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/empowrhq/leadflow/pkg/domain"
	"github.com/empowrhq/leadflow/pkg/enrichment"
	"github.com/empowrhq/leadflow/pkg/webhook"
)

type stubLeadStore struct {
	mu      sync.Mutex
	pending []*domain.Lead
}

func (s *stubLeadStore) Create(ctx context.Context, lead *domain.Lead) error { return nil }
func (s *stubLeadStore) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	return nil, domain.NewNotFoundError("lead")
}
func (s *stubLeadStore) GetByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	return nil, domain.NewNotFoundError("lead")
}
func (s *stubLeadStore) ListByIDs(ctx context.Context, ids []string) ([]*domain.Lead, error) {
	return nil, nil
}
func (s *stubLeadStore) ListByEnrichmentStatus(ctx context.Context, status string, limit int) ([]*domain.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}
func (s *stubLeadStore) UpdateEnrichmentStatus(ctx context.Context, id, status string) error {
	return nil
}
func (s *stubLeadStore) SaveEnrichmentResult(ctx context.Context, id, status string, likelihood *float64, enrichedData map[string]any) error {
	return nil
}
func (s *stubLeadStore) CountByEnrichmentStatus(ctx context.Context) (map[string]int, error) {
	return nil, nil
}

type stubCompanyStore struct{}

func (s *stubCompanyStore) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	return nil, domain.NewNotFoundError("company")
}
func (s *stubCompanyStore) Upsert(ctx context.Context, company *domain.Company) error { return nil }

// blockingTrigger holds each delivery until released
type blockingTrigger struct {
	entered chan struct{}
	release chan struct{}
	count   int
	mu      sync.Mutex
}

func (t *blockingTrigger) Trigger(ctx context.Context, payload webhook.TriggerPayload) error {
	t.mu.Lock()
	t.count++
	t.mu.Unlock()
	if t.entered != nil {
		t.entered <- struct{}{}
	}
	if t.release != nil {
		<-t.release
	}
	return nil
}

func TestRefreshPollerRunCycle(t *testing.T) {
	t.Run("sweeps pending leads", func(t *testing.T) {
		leads := &stubLeadStore{pending: []*domain.Lead{
			{ID: "lead-1", EnrichmentStatus: domain.EnrichmentNotStarted},
		}}
		trigger := &blockingTrigger{}
		orch := enrichment.NewOrchestrator(leads, &stubCompanyStore{}, trigger, 1000, 50, nil)
		poller := NewRefreshPoller(orch, "", nil)

		ran := poller.RunCycle(context.Background())
		assert.True(t, ran)
		assert.Equal(t, 1, trigger.count)
	})

	t.Run("overlapping cycle is skipped", func(t *testing.T) {
		leads := &stubLeadStore{pending: []*domain.Lead{
			{ID: "lead-1", EnrichmentStatus: domain.EnrichmentNotStarted},
		}}
		trigger := &blockingTrigger{
			entered: make(chan struct{}, 1),
			release: make(chan struct{}),
		}
		orch := enrichment.NewOrchestrator(leads, &stubCompanyStore{}, trigger, 1000, 50, nil)
		poller := NewRefreshPoller(orch, "", nil)

		done := make(chan bool)
		go func() {
			done <- poller.RunCycle(context.Background())
		}()

		// Wait until the first cycle is inside the trigger
		select {
		case <-trigger.entered:
		case <-time.After(2 * time.Second):
			t.Fatal("first cycle never started")
		}

		assert.False(t, poller.RunCycle(context.Background()))

		close(trigger.release)
		require.True(t, <-done)

		// Guard released, the next cycle runs again
		assert.True(t, poller.RunCycle(context.Background()))
	})

	t.Run("rejects malformed schedule", func(t *testing.T) {
		orch := enrichment.NewOrchestrator(&stubLeadStore{}, &stubCompanyStore{}, &blockingTrigger{}, 1000, 50, nil)
		poller := NewRefreshPoller(orch, "not a schedule", nil)
		require.Error(t, poller.Setup())
	})

	t.Run("default schedule is valid", func(t *testing.T) {
		orch := enrichment.NewOrchestrator(&stubLeadStore{}, &stubCompanyStore{}, &blockingTrigger{}, 1000, 50, nil)
		poller := NewRefreshPoller(orch, "", nil)
		require.NoError(t, poller.Setup())
	})
}
