package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/fxsync/internal/metrics"
)

// Acquirer downloads one day of data for each instrument into staging.
type Acquirer interface {
	Fetch(ctx context.Context, instruments []string, from, to time.Time) error
}

// Pipeline runs acquisition followed by reconciliation.
type Pipeline struct {
	acquirer    Acquirer // nil skips acquisition
	instruments []string
	driver      *Driver
	logger      *slog.Logger
}

// NewPipeline creates a new Pipeline. A nil acquirer runs reconciliation only.
func NewPipeline(acquirer Acquirer, instruments []string, driver *Driver, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		acquirer:    acquirer,
		instruments: instruments,
		driver:      driver,
		logger:      logger,
	}
}

// Run executes one full pass and records run metrics.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	sum, err := p.run(ctx)

	outcome := metrics.RunUploaded
	switch {
	case err != nil:
		outcome = metrics.RunFailed
	case sum.NoNewData():
		outcome = metrics.RunNoNewData
	}
	metrics.RecordRun(outcome, time.Now())

	if err != nil {
		p.logger.Error("sync run failed", "summary", sum, "duration", time.Since(start), "error", err)
		return sum, err
	}
	if sum.NoNewData() {
		p.logger.Warn("no new data uploaded", "summary", sum, "duration", time.Since(start))
	} else {
		p.logger.Info("sync run complete", "summary", sum, "duration", time.Since(start))
	}
	return sum, nil
}

// run shares one run ID between acquisition and reconciliation.
func (p *Pipeline) run(ctx context.Context) (Summary, error) {
	runID := uuid.New()
	if p.acquirer != nil {
		day := p.driver.TargetDay()
		if err := p.acquirer.Fetch(ctx, p.instruments, day, day.AddDate(0, 0, 1)); err != nil {
			return Summary{RunID: runID}, fmt.Errorf("acquire: %w", err)
		}
	}
	return p.driver.run(ctx, runID)
}
