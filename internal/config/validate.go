package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// CronParser accepts six-field expressions with a leading seconds field
// and descriptors such as "@daily".
var CronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks that all required fields are set and values are valid.
func (c *SyncConfig) Validate() error {
	if len(c.Instruments) == 0 {
		return errors.New("instruments must not be empty")
	}
	for i, inst := range c.Instruments {
		if inst == "" {
			return fmt.Errorf("instruments[%d] is empty", i)
		}
	}

	if c.Staging.Dir == "" {
		return errors.New("staging.dir is required")
	}
	if c.Staging.Lookback() < 0 {
		return errors.New("staging.lookback_days must be >= 0")
	}
	if _, err := time.LoadLocation(c.Staging.Timezone); err != nil {
		return fmt.Errorf("staging.timezone %q is invalid: %w", c.Staging.Timezone, err)
	}
	for i, p := range c.Staging.Prefixes {
		if len(p) != 3 {
			return fmt.Errorf("staging.prefixes[%d] must be 3 characters, got %q", i, p)
		}
	}

	if c.Acquire.IsEnabled() && c.Acquire.Command == "" {
		return errors.New("acquire.command is required when acquisition is enabled")
	}

	if c.Store.Table == "" {
		return errors.New("store.table is required")
	}
	switch c.Store.Backend {
	case BackendPostgres:
		if err := c.Store.Postgres.validate("store.postgres"); err != nil {
			return err
		}
	case BackendPostgREST:
		if err := c.Store.PostgREST.validate("store.postgrest"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendPostgres, BackendPostgREST, c.Store.Backend)
	}

	if c.Upload.BatchSize < 1 {
		return errors.New("upload.batch_size must be >= 1")
	}

	if _, err := CronParser.Parse(c.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule.cron %q is invalid: %w", c.Schedule.Cron, err)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}

func (r *PostgRESTConfig) validate(prefix string) error {
	if r.URL == "" {
		return fmt.Errorf("%s.url is required", prefix)
	}
	if r.APIKey == "" {
		return fmt.Errorf("%s.api_key is required", prefix)
	}
	if r.Retries() < 0 {
		return fmt.Errorf("%s.max_retries must be >= 0", prefix)
	}
	return nil
}
