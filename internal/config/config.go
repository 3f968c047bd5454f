package config

import "time"

// SyncConfig is the root configuration for fxsync.
type SyncConfig struct {
	Instruments []string       `yaml:"instruments"`
	Staging     StagingConfig  `yaml:"staging"`
	Acquire     AcquireConfig  `yaml:"acquire"`
	Store       StoreConfig    `yaml:"store"`
	Upload      UploadConfig   `yaml:"upload"`
	Schedule    ScheduleConfig `yaml:"schedule"`
	Logging     LoggingConfig  `yaml:"logging"`
	Metrics     MetricsConfig  `yaml:"metrics"`
}

// StagingConfig describes where downloaded files land and how they are named.
type StagingConfig struct {
	Dir          string   `yaml:"dir"`
	Pattern      string   `yaml:"pattern"`       // Glob within Dir (e.g., "*.csv")
	Timezone     string   `yaml:"timezone"`      // Zone for naive timestamps
	LookbackDays *int     `yaml:"lookback_days"` // Target day = today - LookbackDays; 0 means today
	Prefixes     []string `yaml:"prefixes"`      // Known 3-letter prefixes for concatenated names
}

// Lookback returns the configured lookback in days, or the default when unset.
func (s StagingConfig) Lookback() int {
	if s.LookbackDays == nil {
		return DefaultLookbackDays
	}
	return *s.LookbackDays
}

// AcquireConfig holds the external download tool invocation.
type AcquireConfig struct {
	Enabled   *bool         `yaml:"enabled"`
	Command   string        `yaml:"command"`
	Args      []string      `yaml:"args"` // Supports {instrument} {from} {to} {timeframe} {format}
	WorkDir   string        `yaml:"work_dir"`
	Timeframe string        `yaml:"timeframe"`
	Format    string        `yaml:"format"`
	Timeout   time.Duration `yaml:"timeout"`
}

// IsEnabled reports whether acquisition runs before reconciliation.
func (a AcquireConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// StoreConfig selects and configures the remote store.
type StoreConfig struct {
	Backend   string          `yaml:"backend"` // "postgres" or "postgrest"
	Table     string          `yaml:"table"`
	Postgres  DBConfig        `yaml:"postgres"`
	PostgREST PostgRESTConfig `yaml:"postgrest"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// PostgRESTConfig holds Supabase/PostgREST settings.
type PostgRESTConfig struct {
	URL          string        `yaml:"url"`     // Project URL, without /rest/v1
	APIKey       string        `yaml:"api_key"` // Sent as apikey and bearer token
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   *int          `yaml:"max_retries"` // 0 disables read retries
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// Retries returns the configured read retry count, or the default when unset.
func (r PostgRESTConfig) Retries() int {
	if r.MaxRetries == nil {
		return DefaultRESTMaxRetries
	}
	return *r.MaxRetries
}

// UploadConfig holds batch uploader settings.
type UploadConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// ScheduleConfig holds scheduled-mode settings.
type ScheduleConfig struct {
	Cron       string `yaml:"cron"` // Six-field expression, seconds first
	ListenAddr string `yaml:"listen_addr"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`   // Optional rotating log file
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"` // Empty disables push after one-shot runs
	Job            string `yaml:"job"`
	Path           string `yaml:"path"`
}
