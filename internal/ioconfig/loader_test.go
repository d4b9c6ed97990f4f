package ioconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taillookup/taillookup/internal/iofs"
	"github.com/taillookup/taillookup/pkg/config"
	"github.com/taillookup/taillookup/pkg/errcode"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaultFile(t *testing.T) {
	path := writeConfig(t, iofs.ConfigYAML)
	raw, err := Load(path)
	require.NoError(t, err)

	cfg := config.New()
	cfg.Update(raw.ToOptions())
	def := config.New()
	assert.Equal(t, def.Store, cfg.Store)
	assert.Equal(t, def.Server, cfg.Server)
	assert.Equal(t, def.Log, cfg.Log)
	assert.Equal(t, def.JobsNumber, cfg.JobsNumber)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
store:
  backend: postgres
  postgres:
    host: db.example.org
server:
  port: 9000
  batched: true
ingest:
  min_ratio: 0.5
`)
	raw, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", raw.Store.Backend)
	assert.Equal(t, "db.example.org", raw.Store.Postgres.Host)
	assert.Equal(t, 9000, raw.Server.Port)
	assert.True(t, raw.Server.Batched)
	assert.Equal(t, 0.5, raw.Ingest.MinRatio)
}

func TestLoadEnv(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("TAILLOOKUP_SERVER_PORT", "9100")
	t.Setenv("TAILLOOKUP_STORE_POSTGRES_SSL_MODE", "require")
	t.Setenv("TAILLOOKUP_LOG_LEVEL", "debug")
	t.Setenv("TAILLOOKUP_JOBS_NUMBER", "3")

	raw, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, raw.Server.Port)
	assert.Equal(t, "require", raw.Store.Postgres.SSLMode)
	assert.Equal(t, "debug", raw.Log.Level)
	assert.Equal(t, 3, raw.JobsNumber)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("TAILLOOKUP_STORE_BACKEND", "postgres")
	raw, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", raw.Store.Backend)
	assert.Zero(t, raw.Server.Port)
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "server: [port\n")
	_, err := Load(path)
	require.Error(t, err)

	var gnErr *gn.Error
	require.ErrorAs(t, err, &gnErr)
	assert.Equal(t, errcode.ReadFileError, gnErr.Code)
}
