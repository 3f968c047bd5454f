package config

import (
	"strings"
	"time"
)

// Default values for optional configuration fields.
const (
	DefaultStagingDir     = "download"
	DefaultStagingPattern = "*.csv"
	DefaultTimezone       = "UTC"
	DefaultLookbackDays   = 1
	DefaultAcquireCommand = "npx"
	DefaultTimeframe      = "m1"
	DefaultFormat         = "csv"
	DefaultAcquireTimeout = 10 * time.Minute
	DefaultBackend        = BackendPostgres
	DefaultTable          = "forex_prices"
	DefaultDBPort         = 5432
	DefaultDBSSLMode      = "prefer"
	DefaultMaxConns       = 4
	DefaultMinConns       = 1
	DefaultRESTTimeout    = 30 * time.Second
	DefaultRESTMaxRetries = 3
	DefaultRESTBackoff    = 1 * time.Second
	DefaultBatchSize      = 1000
	DefaultCron           = "0 30 6 * * *"
	DefaultListenAddr     = ":9090"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultLogMaxSizeMB   = 50
	DefaultLogMaxBackups  = 5
	DefaultLogMaxAgeDays  = 30
	DefaultMetricsJob     = "fxsync"
	DefaultMetricsPath    = "/metrics"
)

// Store backends.
const (
	BackendPostgres  = "postgres"
	BackendPostgREST = "postgrest"
)

// DefaultInstruments are the pairs downloaded when none are configured.
var DefaultInstruments = []string{"EURUSD", "GBPUSD", "EURGBP", "GBPAUD", "GBPNOK", "GBPSEK"}

// DefaultPrefixes are the base currencies whose concatenated filenames use a 6-character symbol.
var DefaultPrefixes = []string{"EUR", "GBP", "USD"}

// DefaultAcquireArgs reproduce the dukascopy-node invocation.
var DefaultAcquireArgs = []string{
	"dukascopy-node",
	"-i", "{instrument}",
	"-from", "{from}",
	"-to", "{to}",
	"-t", "{timeframe}",
	"-f", "{format}",
}

func (c *SyncConfig) applyDefaults() {
	// Instrument defaults
	if len(c.Instruments) == 0 {
		c.Instruments = append([]string(nil), DefaultInstruments...)
	}
	for i, inst := range c.Instruments {
		c.Instruments[i] = strings.ToUpper(strings.TrimSpace(inst))
	}

	// Staging defaults
	if c.Staging.Dir == "" {
		c.Staging.Dir = DefaultStagingDir
	}
	if c.Staging.Pattern == "" {
		c.Staging.Pattern = DefaultStagingPattern
	}
	if c.Staging.Timezone == "" {
		c.Staging.Timezone = DefaultTimezone
	}
	if c.Staging.LookbackDays == nil {
		c.Staging.LookbackDays = intPtr(DefaultLookbackDays)
	}
	if len(c.Staging.Prefixes) == 0 {
		c.Staging.Prefixes = append([]string(nil), DefaultPrefixes...)
	}

	// Acquire defaults
	if c.Acquire.Command == "" {
		c.Acquire.Command = DefaultAcquireCommand
		if len(c.Acquire.Args) == 0 {
			c.Acquire.Args = append([]string(nil), DefaultAcquireArgs...)
		}
	}
	if c.Acquire.Timeframe == "" {
		c.Acquire.Timeframe = DefaultTimeframe
	}
	if c.Acquire.Format == "" {
		c.Acquire.Format = DefaultFormat
	}
	if c.Acquire.Timeout == 0 {
		c.Acquire.Timeout = DefaultAcquireTimeout
	}

	// Store defaults
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	if c.Store.Table == "" {
		c.Store.Table = DefaultTable
	}
	applyDBDefaults(&c.Store.Postgres)
	if c.Store.PostgREST.Timeout == 0 {
		c.Store.PostgREST.Timeout = DefaultRESTTimeout
	}
	if c.Store.PostgREST.MaxRetries == nil {
		c.Store.PostgREST.MaxRetries = intPtr(DefaultRESTMaxRetries)
	}
	if c.Store.PostgREST.RetryBackoff == 0 {
		c.Store.PostgREST.RetryBackoff = DefaultRESTBackoff
	}

	// Upload defaults
	if c.Upload.BatchSize == 0 {
		c.Upload.BatchSize = DefaultBatchSize
	}

	// Schedule defaults
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = DefaultCron
	}
	if c.Schedule.ListenAddr == "" {
		c.Schedule.ListenAddr = DefaultListenAddr
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}

	// Metrics defaults
	if c.Metrics.Job == "" {
		c.Metrics.Job = DefaultMetricsJob
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}

func intPtr(v int) *int {
	return &v
}
