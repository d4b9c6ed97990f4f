package config

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/gnames/gn"
)

// Update applies a slice of Option functions to the Config.
// This is the only way to modify a Config after creation.
// Invalid options are rejected with warnings - config remains in valid state.
func (c *Config) Update(opts []Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// ToOptions converts the Config to a slice of Option functions.
// Only includes persistent fields appropriate for config.yaml.
// Excludes runtime-only fields (HomeDir, Source.Path, Ingest.Force).
// Used for round-tripping config.yaml ↔ Config conversions.
func (c *Config) ToOptions() []Option {
	var res []Option
	var s string
	var i int

	s = c.Store.Backend
	if s != "" {
		res = append(res, OptStoreBackend(s))
	}
	s = c.Store.Path
	if s != "" {
		res = append(res, OptStorePath(s))
	}
	s = c.Store.Postgres.Host
	if s != "" {
		res = append(res, OptPostgresHost(s))
	}
	i = c.Store.Postgres.Port
	if i > 0 {
		res = append(res, OptPostgresPort(i))
	}
	s = c.Store.Postgres.User
	if s != "" {
		res = append(res, OptPostgresUser(s))
	}
	s = c.Store.Postgres.Password
	if s != "" {
		res = append(res, OptPostgresPassword(s))
	}
	s = c.Store.Postgres.Database
	if s != "" {
		res = append(res, OptPostgresDatabase(s))
	}
	s = c.Store.Postgres.SSLMode
	if s != "" {
		res = append(res, OptPostgresSSLMode(s))
	}

	s = c.Source.URL
	if s != "" {
		res = append(res, OptSourceURL(s))
	}
	i = c.Source.TimeoutSec
	if i > 0 {
		res = append(res, OptSourceTimeoutSec(i))
	}
	i = c.Source.RetryWaitSec
	if i > 0 {
		res = append(res, OptSourceRetryWaitSec(i))
	}

	if c.Ingest.MinRatio > 0 {
		res = append(res, OptIngestMinRatio(c.Ingest.MinRatio))
	}
	i = c.Ingest.BatchSize
	if i > 0 {
		res = append(res, OptIngestBatchSize(i))
	}

	i = c.Server.Port
	if i > 0 {
		res = append(res, OptServerPort(i))
	}
	i = c.Server.BulkLimit
	if i > 0 {
		res = append(res, OptServerBulkLimit(i))
	}
	i = c.Server.ReloadIntervalSec
	if i > 0 {
		res = append(res, OptServerReloadIntervalSec(i))
	}
	res = append(res, OptServerBatched(c.Server.Batched))

	s = c.Log.Format
	if s != "" {
		res = append(res, OptLogFormat(s))
	}
	s = c.Log.Level
	if s != "" {
		res = append(res, OptLogLevel(s))
	}
	s = c.Log.Destination
	if s != "" {
		res = append(res, OptLogDestination(s))
	}

	i = c.JobsNumber
	if i > 0 {
		res = append(res, OptJobsNumber(i))
	}
	return res
}

func isValidString(name, s string) bool {
	res := s != ""
	if !res {
		gn.Warn("<em>%s</em> cannot be empty, ignoring", name)
	}
	return res
}

func isValidInt(name string, i int) bool {
	res := i > 0
	if !res {
		gn.Warn("<em>%s</em> has to be positive number, ignoring %d", name, i)
	}
	return res
}

func isValidRatio(name string, f float64) bool {
	res := f >= 0 && f <= 1
	if !res {
		gn.Warn("<em>%s</em> has to be between 0 and 1, ignoring %v", name, f)
	}
	return res
}

func isValidEnum(name, val string) bool {
	s := struct{}{}
	data := map[string]map[string]struct{}{
		"Store.Backend": {"sqlite": s, "postgres": s},
		"Postgres.SSLMode": {"disable": s, "require": s,
			"verify-ca": s, "verify-full": s},
		"Log.Level":       {"debug": s, "info": s, "warn": s, "error": s},
		"Log.Format":      {"json": s, "text": s, "tint": s},
		"Log.Destination": {"file": s, "stderr": s, "stdout": s},
	}
	vals := slices.Sorted(maps.Keys(data[name]))
	var lines []string
	for _, v := range vals {
		line := fmt.Sprintf("  * %s", v)
		lines = append(lines, line)
	}
	if _, ok := data[name][val]; ok {
		return true
	}
	gn.Warn(
		"<em>%s</em> does not support '%s' as a value. "+
			"Valid values are: \n%s\nIgnoring...",
		name, val, strings.Join(lines, "\n"),
	)
	return false
}
