// Package config provides configuration management for taillookup.
//
// This package has no I/O dependencies (no file operations, no network calls).
// Validation functions may write user-facing warnings via gn.Warn().
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml > defaults
//
// # Design Principles
//
// - Default config (from New()) is always valid - no validation needed
// - All mutations go through Option functions - the only way to modify Config
// - Invalid options are rejected with gn.Warn() - config remains in valid state
// - ToOptions() converts persistent fields (those in config.yaml)
// - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Store: backend, path, postgres host, port, user, password, database, ssl_mode
//   - Source: url, timeout_sec, retry_wait_sec
//   - Ingest: min_ratio, batch_size
//   - Server: port, bulk_limit, reload_interval_sec, batched
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Source.Path, Ingest.Force (per-command)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use TAILLOOKUP_ prefix with underscores for nesting:
//
//	TAILLOOKUP_STORE_BACKEND=sqlite
//	TAILLOOKUP_STORE_PATH=/var/lib/taillookup/aircraft.db
//	TAILLOOKUP_SERVER_PORT=8080
//	TAILLOOKUP_LOG_LEVEL=info
package config

import (
	"path/filepath"
	"runtime"
)

// Config represents the complete taillookup configuration.
type Config struct {
	// Store selects where snapshots are kept.
	Store StoreConfig `mapstructure:"store" yaml:"store"`

	// Source describes where the FAA registry is downloaded from.
	Source SourceConfig `mapstructure:"source" yaml:"source"`

	// Ingest contains settings of the build command.
	Ingest IngestConfig `mapstructure:"ingest" yaml:"ingest"`

	// Server contains settings of the serve command.
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber limits concurrent lookups within one bulk request.
	// Default value is set according to the number of available threads.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories reside.
	// It must be set by CLI during init, there is no default value for it.
	HomeDir string
}

// StoreConfig selects the snapshot backend.
type StoreConfig struct {
	// Backend is "sqlite" (a single file, default) or "postgres".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the SQLite snapshot file. When empty, the file is kept
	// in the data directory.
	Path string `mapstructure:"path" yaml:"path"`

	// Postgres contains connection settings for the "postgres" backend.
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
}

// PostgresConfig contains PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `mapstructure:"host"     yaml:"host"`
	Port     int    `mapstructure:"port"     yaml:"port"`
	User     string `mapstructure:"user"     yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Database string `mapstructure:"database" yaml:"database"`
	// SSLMode valid values: "disable", "require", "verify-ca", "verify-full".
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// SourceConfig describes the registry download.
type SourceConfig struct {
	// URL of the releasable aircraft ZIP archive.
	URL string `mapstructure:"url" yaml:"url"`

	// TimeoutSec limits one download attempt.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// RetryWaitSec is the pause before the single retry of a failed
	// download.
	RetryWaitSec int `mapstructure:"retry_wait_sec" yaml:"retry_wait_sec"`

	// Path is a local ZIP file or a directory with MASTER and ACFTREF
	// files. When set, nothing is downloaded.
	// Runtime-only field.
	Path string `mapstructure:"-" yaml:"-"`
}

// IngestConfig contains settings of the ingestion pipeline.
type IngestConfig struct {
	// MinRatio is the smallest accepted share of the previous snapshot
	// size. A new snapshot with fewer registrations is rejected as
	// truncated. Zero disables the check.
	MinRatio float64 `mapstructure:"min_ratio" yaml:"min_ratio"`

	// BatchSize is the number of rows between progress updates.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`

	// Force publishes a snapshot even when it is smaller than
	// MinRatio allows. Empty snapshots are never published.
	// Runtime-only field.
	Force bool `mapstructure:"-" yaml:"-"`
}

// ServerConfig contains settings of the HTTP service.
type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port"`

	// BulkLimit is the largest number of tail numbers in one bulk
	// request.
	BulkLimit int `mapstructure:"bulk_limit" yaml:"bulk_limit"`

	// ReloadIntervalSec is how often the snapshot file is checked for
	// replacement when file system notifications are unavailable.
	ReloadIntervalSec int `mapstructure:"reload_interval_sec" yaml:"reload_interval_sec"`

	// Batched makes bulk lookups use one query for all tail numbers.
	Batched bool `mapstructure:"batched" yaml:"batched"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json', 'text' or 'tint' (user-facing and colored).
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (to default place), STDERR or STDOUT
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	res := &Config{
		Store: StoreConfig{
			Backend: "sqlite",
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Password: "postgres",
				Database: "taillookup",
				SSLMode:  "disable",
			},
		},
		Source: SourceConfig{
			URL:          SourceURL,
			TimeoutSec:   300,
			RetryWaitSec: 10,
		},
		Ingest: IngestConfig{
			MinRatio:  0.1,
			BatchSize: 10_000,
		},
		Server: ServerConfig{
			Port:              8080,
			BulkLimit:         50,
			ReloadIntervalSec: 30,
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}

	return res
}

// SnapshotPath returns the SQLite snapshot file location.
func (c *Config) SnapshotPath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	return filepath.Join(DataDir(c.HomeDir), SnapshotFile)
}
