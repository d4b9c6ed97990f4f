package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptStoreBackend sets the snapshot backend.
// Valid values: "sqlite", "postgres".
func OptStoreBackend(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Store.Backend", s) {
			c.Store.Backend = s
		}
	}
}

// OptStorePath sets the SQLite snapshot file.
func OptStorePath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Store Path", s) {
			c.Store.Path = s
		}
	}
}

// OptPostgresHost sets the PostgreSQL server hostname or IP address.
func OptPostgresHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Postgres Host", s) {
			c.Store.Postgres.Host = s
		}
	}
}

// OptPostgresPort sets the PostgreSQL server port number.
func OptPostgresPort(i int) Option {
	return func(c *Config) {
		if isValidInt("Postgres Port", i) {
			c.Store.Postgres.Port = i
		}
	}
}

// OptPostgresUser sets the PostgreSQL database username.
func OptPostgresUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Postgres User", s) {
			c.Store.Postgres.User = s
		}
	}
}

// OptPostgresPassword sets the PostgreSQL database password.
func OptPostgresPassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Postgres Password", s) {
			c.Store.Postgres.Password = s
		}
	}
}

// OptPostgresDatabase sets the PostgreSQL database name.
func OptPostgresDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Postgres Database", s) {
			c.Store.Postgres.Database = s
		}
	}
}

// OptPostgresSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptPostgresSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Postgres.SSLMode", s) {
			c.Store.Postgres.SSLMode = s
		}
	}
}

// OptSourceURL sets the registry archive URL.
func OptSourceURL(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source URL", s) {
			c.Source.URL = s
		}
	}
}

// OptSourceTimeoutSec sets the limit of one download attempt.
func OptSourceTimeoutSec(i int) Option {
	return func(c *Config) {
		if isValidInt("Source Timeout", i) {
			c.Source.TimeoutSec = i
		}
	}
}

// OptSourceRetryWaitSec sets the pause before the download retry.
func OptSourceRetryWaitSec(i int) Option {
	return func(c *Config) {
		if isValidInt("Source Retry Wait", i) {
			c.Source.RetryWaitSec = i
		}
	}
}

// OptSourcePath sets a local ZIP file or directory to ingest instead
// of downloading.
// Runtime-only field - not in ToOptions().
func OptSourcePath(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source Path", s) {
			c.Source.Path = s
		}
	}
}

// OptIngestMinRatio sets the smallest accepted share of the previous
// snapshot size, from 0 to 1.
func OptIngestMinRatio(f float64) Option {
	return func(c *Config) {
		if isValidRatio("Ingest Min Ratio", f) {
			c.Ingest.MinRatio = f
		}
	}
}

// OptIngestBatchSize sets the number of rows between progress updates.
func OptIngestBatchSize(i int) Option {
	return func(c *Config) {
		if isValidInt("Ingest Batch Size", i) {
			c.Ingest.BatchSize = i
		}
	}
}

// OptIngestForce allows publishing a snapshot that fails the size
// ratio check.
// Runtime-only field - not in ToOptions().
func OptIngestForce(b bool) Option {
	return func(c *Config) {
		c.Ingest.Force = b
	}
}

// OptServerPort sets the HTTP port.
func OptServerPort(i int) Option {
	return func(c *Config) {
		if isValidInt("Server Port", i) {
			c.Server.Port = i
		}
	}
}

// OptServerBulkLimit sets the largest bulk request.
func OptServerBulkLimit(i int) Option {
	return func(c *Config) {
		if isValidInt("Server Bulk Limit", i) {
			c.Server.BulkLimit = i
		}
	}
}

// OptServerReloadIntervalSec sets how often the snapshot file is polled
// when file system notifications are unavailable.
func OptServerReloadIntervalSec(i int) Option {
	return func(c *Config) {
		if isValidInt("Server Reload Interval", i) {
			c.Server.ReloadIntervalSec = i
		}
	}
}

// OptServerBatched makes bulk lookups use a single query.
func OptServerBatched(b bool) Option {
	return func(c *Config) {
		c.Server.Batched = b
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text", "tint".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent lookups per bulk request.
// Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
