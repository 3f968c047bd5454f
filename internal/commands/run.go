package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rickgao/fxsync/internal/acquire"
	"github.com/rickgao/fxsync/internal/metrics"
	"github.com/rickgao/fxsync/internal/oracle"
	"github.com/rickgao/fxsync/internal/reconcile"
	"github.com/rickgao/fxsync/internal/staging"
	"github.com/rickgao/fxsync/internal/store"
	"github.com/rickgao/fxsync/internal/writer"
)

// runCmd downloads and reconciles once
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Download yesterday's data and upload new days",
	Long: `Run the download tool for every configured instrument, then reconcile the
staging directory against the price store.

Exits non-zero on any download, store, upload, or cleanup failure. A run
that finds nothing new to upload exits zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(), true)
	},
}

// reconcileCmd reconciles already staged files
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Upload staged files without downloading",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce(cmd.Context(), false)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func runOnce(ctx context.Context, withAcquire bool) error {
	env, err := loadEnvironment(true)
	if err != nil {
		return err
	}
	defer env.Close()

	pipeline, st, err := buildPipeline(ctx, env, withAcquire)
	if err != nil {
		return err
	}
	defer st.Close()

	_, runErr := pipeline.Run(ctx)

	if url := env.cfg.Metrics.PushgatewayURL; url != "" {
		if err := metrics.Push(ctx, url, env.cfg.Metrics.Job); err != nil {
			env.logger.Warn("failed to push metrics", "url", url, "error", err)
		}
	}

	return runErr
}

// buildPipeline wires the store, oracle, uploader, driver, and acquirer.
func buildPipeline(ctx context.Context, env *environment, withAcquire bool) (*reconcile.Pipeline, store.Client, error) {
	cfg := env.cfg

	st, err := store.Open(ctx, cfg.Store, env.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	resolver := staging.NewResolver(cfg.Instruments, cfg.Staging.Prefixes, env.location)
	uploader := writer.NewUploader(writer.WriterConfig{BatchSize: cfg.Upload.BatchSize}, st, env.logger)

	driver := reconcile.NewDriver(reconcile.Config{
		Dir:          cfg.Staging.Dir,
		Pattern:      cfg.Staging.Pattern,
		LookbackDays: cfg.Staging.Lookback(),
		Location:     env.location,
	}, resolver, oracle.New(st), uploader, env.logger)

	var acq reconcile.Acquirer
	if withAcquire && cfg.Acquire.IsEnabled() {
		acq = acquire.NewRunner(cfg.Acquire, env.logger)
	}

	return reconcile.NewPipeline(acq, cfg.Instruments, driver, env.logger), st, nil
}
