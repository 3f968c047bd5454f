// Package commands implements the fxsync command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/fxsync/internal/config"
	"github.com/rickgao/fxsync/internal/logging"
	"github.com/rickgao/fxsync/internal/version"
)

var (
	configPath string
	envFile    string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fxsync",
	Short: "Daily forex minute-bar synchronizer",
	Long: `fxsync downloads the previous day's one-minute forex bars, checks the
price store for each (pair, day), and uploads only days not yet stored.

Staged files are deleted once their day is confirmed stored. Files that
cannot be uploaded stay in the staging directory for the next run.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/fxsync.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config (missing is ignored)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// environment is the loaded config and logger shared by subcommands.
type environment struct {
	cfg      *config.SyncConfig
	logger   *slog.Logger
	location *time.Location
	closer   io.Closer
}

func (e *environment) Close() {
	if e.closer != nil {
		e.closer.Close()
	}
}

// loadEnvironment reads .env and the config, then builds the logger.
// validate is false for commands that only need part of the config.
func loadEnvironment(validate bool) (*environment, error) {
	if err := config.LoadDotenv(envFile); err != nil {
		return nil, err
	}

	load := config.LoadWithDefaults
	if validate {
		load = config.LoadAndValidate
	}
	cfg, err := load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	loc, err := time.LoadLocation(cfg.Staging.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		"config", configPath,
		"backend", cfg.Store.Backend,
		"instruments", cfg.Instruments,
		"staging_dir", cfg.Staging.Dir,
	)

	return &environment{
		cfg:      cfg,
		logger:   logger,
		location: loc,
		closer:   closer,
	}, nil
}
