// Package ioconfig reads persistent settings from config.yaml and
// TAILLOOKUP_ environment variables.
package ioconfig

import (
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/taillookup/taillookup/internal/iofs"
	"github.com/taillookup/taillookup/pkg/config"
)

// EnvPrefix is the prefix of environment variables.
const EnvPrefix = "TAILLOOKUP"

// Load reads the config file at path, applies environment overrides and
// returns the raw result. A missing file leaves only environment values.
// The result is meant to be converted with ToOptions and applied to
// config.New(), so invalid values are rejected there.
func Load(path string) (*config.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	initEnvVars(v)

	if _, err := os.Stat(path); err == nil {
		if err = v.ReadInConfig(); err != nil {
			return nil, iofs.ReadFileError(path, err)
		}
	}

	var res config.Config
	if err := v.Unmarshal(&res); err != nil {
		return nil, iofs.ReadFileError(path, err)
	}

	return &res, nil
}

// initEnvVars binds the environment variables that are allowed.
// They match the fields of config.ToOptions().
func initEnvVars(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Store configuration
	v.BindEnv("store.backend", EnvPrefix+"_STORE_BACKEND")
	v.BindEnv("store.path", EnvPrefix+"_STORE_PATH")
	v.BindEnv("store.postgres.host", EnvPrefix+"_STORE_POSTGRES_HOST")
	v.BindEnv("store.postgres.port", EnvPrefix+"_STORE_POSTGRES_PORT")
	v.BindEnv("store.postgres.user", EnvPrefix+"_STORE_POSTGRES_USER")
	v.BindEnv("store.postgres.password", EnvPrefix+"_STORE_POSTGRES_PASSWORD")
	v.BindEnv("store.postgres.database", EnvPrefix+"_STORE_POSTGRES_DATABASE")
	v.BindEnv("store.postgres.ssl_mode", EnvPrefix+"_STORE_POSTGRES_SSL_MODE")

	// Source configuration
	v.BindEnv("source.url", EnvPrefix+"_SOURCE_URL")
	v.BindEnv("source.timeout_sec", EnvPrefix+"_SOURCE_TIMEOUT_SEC")
	v.BindEnv("source.retry_wait_sec", EnvPrefix+"_SOURCE_RETRY_WAIT_SEC")

	// Ingest configuration
	v.BindEnv("ingest.min_ratio", EnvPrefix+"_INGEST_MIN_RATIO")
	v.BindEnv("ingest.batch_size", EnvPrefix+"_INGEST_BATCH_SIZE")

	// Server configuration
	v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT")
	v.BindEnv("server.bulk_limit", EnvPrefix+"_SERVER_BULK_LIMIT")
	v.BindEnv("server.reload_interval_sec", EnvPrefix+"_SERVER_RELOAD_INTERVAL_SEC")
	v.BindEnv("server.batched", EnvPrefix+"_SERVER_BATCHED")

	// Log configuration
	v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL")
	v.BindEnv("log.format", EnvPrefix+"_LOG_FORMAT")
	v.BindEnv("log.destination", EnvPrefix+"_LOG_DESTINATION")

	// General configuration
	v.BindEnv("jobs_number", EnvPrefix+"_JOBS_NUMBER")

	v.AutomaticEnv()
}
