package jobs

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/empowrhq/leadflow/pkg/enrichment"
	"github.com/empowrhq/leadflow/pkg/models"
)

// Poller states
const (
	stateIdle int32 = iota
	stateRunning
)

// RefreshPoller periodically sweeps not_started leads into the enrichment
// pipeline. A cycle that is still running when the next tick fires is never
// doubled up: the tick is skipped instead.
type RefreshPoller struct {
	cron         *cron.Cron
	orchestrator *enrichment.Orchestrator
	schedule     string
	state        atomic.Int32
	logger       *log.Logger
}

// NewRefreshPoller creates a new refresh poller with a cron schedule
// (standard 5-field syntax, e.g. "*/15 * * * *")
func NewRefreshPoller(orchestrator *enrichment.Orchestrator, schedule string, logger *log.Logger) *RefreshPoller {
	if logger == nil {
		logger = log.Default()
	}
	if schedule == "" {
		schedule = "*/15 * * * *"
	}

	return &RefreshPoller{
		cron:         cron.New(),
		orchestrator: orchestrator,
		schedule:     schedule,
		logger:       logger,
	}
}

// Setup registers the refresh job on the scheduler
func (p *RefreshPoller) Setup() error {
	p.logger.Println("Setting up enrichment refresh job...")

	_, err := p.cron.AddFunc(p.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		p.RunCycle(ctx)
	})
	if err != nil {
		return err
	}

	p.logger.Printf("✅ Enrichment refresh job configured (schedule: %s)", p.schedule)

	return nil
}

// RunCycle performs one refresh sweep. Returns false when a previous cycle
// is still in flight and the sweep was skipped.
func (p *RefreshPoller) RunCycle(ctx context.Context) bool {
	if !p.state.CompareAndSwap(stateIdle, stateRunning) {
		p.logger.Println("⚠️ Previous refresh cycle still running, skipping")
		return false
	}
	defer p.state.Store(stateIdle)

	p.logger.Println("🕐 Running enrichment refresh cycle...")

	resp, err := p.orchestrator.TriggerBatch(ctx, models.BatchTriggerRequest{})
	if err != nil {
		p.logger.Printf("❌ Refresh cycle failed: %v", err)
		return true
	}

	if resp.Total == 0 {
		p.logger.Println("✅ No leads waiting for enrichment")
		return true
	}

	p.logger.Printf("✅ Refresh cycle completed: %d triggered, %d failed of %d", resp.Triggered, resp.Failed, resp.Total)

	return true
}

// Start starts the scheduler
func (p *RefreshPoller) Start() {
	p.logger.Println("🚀 Starting enrichment refresh scheduler...")
	p.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish
func (p *RefreshPoller) Stop() {
	p.logger.Println("🛑 Stopping enrichment refresh scheduler...")
	ctx := p.cron.Stop()
	<-ctx.Done()
}
