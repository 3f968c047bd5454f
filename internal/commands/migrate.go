package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rickgao/fxsync/internal/database"
)

var migrateSteps int

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration management",
	Long: `Manage the price table schema in store.postgres.

Examples:
  fxsync migrate up             # Apply all pending migrations
  fxsync migrate down --steps 1 # Roll back the last migration
  fxsync migrate list           # List embedded migrations`,
}

// migrateUpCmd runs pending migrations
var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(false)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.cfg.Store.Postgres.Host == "" {
			return errors.New("store.postgres.host is required for migrations")
		}
		return database.MigrateUp(env.cfg.Store.Postgres, env.logger)
	},
}

// migrateDownCmd rolls back migrations
var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment(false)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.cfg.Store.Postgres.Host == "" {
			return errors.New("store.postgres.host is required for migrations")
		}
		return database.MigrateDown(env.cfg.Store.Postgres, migrateSteps, env.logger)
	},
}

// migrateListCmd lists embedded migrations
var migrateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List embedded migration files",
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := database.Migrations()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateListCmd)

	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "number of migrations to roll back")
}
