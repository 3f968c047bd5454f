package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rickgao/fxsync/internal/config"
	"github.com/rickgao/fxsync/internal/reconcile"
)

// Job is one scheduled pipeline run.
type Job interface {
	Run(ctx context.Context) (reconcile.Summary, error)
}

// JobFunc is a function adapter for Job.
type JobFunc func(ctx context.Context) (reconcile.Summary, error)

func (f JobFunc) Run(ctx context.Context) (reconcile.Summary, error) {
	return f(ctx)
}

// Stats holds scheduler counters.
type Stats struct {
	Runs     int64
	Failures int64
	LastRun  time.Time
}

// Scheduler invokes a Job on a cron schedule.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	job      Job
	logger   *slog.Logger

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc

	runs     atomic.Int64
	failures atomic.Int64
	mu       sync.Mutex
	lastRun  time.Time
}

// New creates a Scheduler for a six-field cron expression.
func New(spec string, loc *time.Location, job Job, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}

	schedule, err := config.CronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}

	cl := cronLogger{logger: logger}
	return &Scheduler{
		spec:     spec,
		schedule: schedule,
		job:      job,
		logger:   logger,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithParser(config.CronParser),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
	}, nil
}

// Start registers the job and begins the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.cron.Schedule(s.schedule, cron.FuncJob(s.runOnce))
	s.cron.Start()

	s.logger.Info("scheduler started",
		"schedule", s.spec,
		"next_run", s.Next(),
	)

	return nil
}

// Stop halts the schedule and waits for an in-flight run to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}

	done := s.cron.Stop()

	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the scheduler and blocks until ctx is done, then stops it
// within shutdownTimeout.
func (s *Scheduler) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.Stop(stopCtx)
}

// Next returns the next scheduled run time.
func (s *Scheduler) Next() time.Time {
	if entries := s.cron.Entries(); len(entries) > 0 && !entries[0].Next.IsZero() {
		return entries[0].Next
	}
	return s.schedule.Next(time.Now())
}

// Stats returns current counters.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	last := s.lastRun
	s.mu.Unlock()
	return Stats{
		Runs:     s.runs.Load(),
		Failures: s.failures.Load(),
		LastRun:  last,
	}
}

// runOnce executes the job. Errors are logged, never propagated.
func (s *Scheduler) runOnce() {
	if s.ctx.Err() != nil {
		return
	}

	s.runs.Add(1)
	s.mu.Lock()
	s.lastRun = time.Now()
	s.mu.Unlock()

	if _, err := s.job.Run(s.ctx); err != nil {
		s.failures.Add(1)
		s.logger.Error("scheduled run failed", "error", err, "next_run", s.Next())
		return
	}
	s.logger.Debug("scheduled run finished", "next_run", s.Next())
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
