package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/fxsync/internal/metrics"
	"github.com/rickgao/fxsync/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

// scheduleCmd runs the pipeline on a cron schedule
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the sync pipeline on a cron schedule",
	Long: `Run download and reconciliation on the configured cron schedule
(schedule.cron, six fields with seconds first) until interrupted.

Serves Prometheus metrics and a /health endpoint on schedule.listen_addr.
A failed run is logged and the schedule continues.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSchedule(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(ctx context.Context) error {
	env, err := loadEnvironment(true)
	if err != nil {
		return err
	}
	defer env.Close()

	pipeline, st, err := buildPipeline(ctx, env, true)
	if err != nil {
		return err
	}
	defer st.Close()

	sched, err := scheduler.New(env.cfg.Schedule.Cron, env.location, pipeline, env.logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              env.cfg.Schedule.ListenAddr,
		Handler:           newHealthHandler(env.cfg.Metrics.Path, sched),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return sched.Run(gctx, shutdownTimeout)
	})

	g.Go(func() error {
		env.logger.Info("starting health server", "addr", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		env.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	env.logger.Info("scheduler exited")
	return err
}

// statsSource reports scheduler progress.
type statsSource interface {
	Stats() scheduler.Stats
	Next() time.Time
}

// newHealthHandler serves metrics and a JSON health summary.
func newHealthHandler(metricsPath string, sched statsSource) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(metricsPath, metrics.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := sched.Stats()

		health := struct {
			Status   string     `json:"status"`
			Runs     int64      `json:"runs"`
			Failures int64      `json:"failures"`
			LastRun  *time.Time `json:"last_run,omitempty"`
			NextRun  time.Time  `json:"next_run"`
		}{
			Status:   "healthy",
			Runs:     stats.Runs,
			Failures: stats.Failures,
			NextRun:  sched.Next(),
		}
		if !stats.LastRun.IsZero() {
			health.LastRun = &stats.LastRun
		}
		if stats.Runs > 0 && stats.Failures == stats.Runs {
			health.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(health); err != nil {
			slog.Default().Warn("write health response", "error", err)
		}
	})

	return mux
}
