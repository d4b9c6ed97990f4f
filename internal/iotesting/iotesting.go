// Package iotesting provides shared test utilities: FAA registry fixtures
// and PostgreSQL connections for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taillookup/taillookup/pkg/config"
	"github.com/taillookup/taillookup/pkg/faa"
)

const (
	// TestDatabaseName is the database name used for all integration tests.
	// This ensures tests never accidentally run against production databases.
	TestDatabaseName = "taillookup_test"

	masterHeader  = "N-NUMBER,SERIAL NUMBER,MFR MDL CODE,ENG MFR MDL,YEAR MFR"
	acftrefHeader = "CODE,MFR,MODEL,TYPE-ACFT,TYPE-ENG,AC-CAT,BUILD-CERT-IND"
	bom           = "\ufeff"
)

// PostgresConfig returns connection settings for integration tests.
// Defaults can be changed with TAILLOOKUP_TEST_PG_HOST and
// TAILLOOKUP_TEST_PG_PORT. The database is always TestDatabaseName.
func PostgresConfig() config.PostgresConfig {
	res := config.New().Store.Postgres
	if h := os.Getenv("TAILLOOKUP_TEST_PG_HOST"); h != "" {
		res.Host = h
	}
	if p, err := strconv.Atoi(os.Getenv("TAILLOOKUP_TEST_PG_PORT")); err == nil {
		res.Port = p
	}
	res.Database = TestDatabaseName
	return res
}

// ConnectPostgres opens a pool to the test database. The test is skipped
// in short mode or when PostgreSQL is unreachable.
func ConnectPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := PostgresConfig()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	dsn := "postgres://" + cfg.User + ":" + cfg.Password + "@" + cfg.Host +
		":" + strconv.Itoa(cfg.Port) + "/" + cfg.Database +
		"?sslmode=" + cfg.SSLMode
	pool, err := pgxpool.New(ctx, dsn)
	if err == nil {
		err = pool.Ping(ctx)
	}
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		t.Skipf("PostgreSQL is not available: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// MasterLine renders one MASTER record from layout field names.
func MasterLine(t *testing.T, values map[string]string) string {
	t.Helper()
	master, _, err := faa.Layouts()
	if err != nil {
		t.Fatalf("Cannot load layouts: %v", err)
	}
	return master.Format(values, ',')
}

// ModelLine renders one ACFTREF record from layout field names.
func ModelLine(t *testing.T, values map[string]string) string {
	t.Helper()
	_, acftref, err := faa.Layouts()
	if err != nil {
		t.Fatalf("Cannot load layouts: %v", err)
	}
	return acftref.Format(values, ',')
}

// WriteDir writes MASTER.txt and ACFTREF.txt into dir the way the FAA
// publishes them: a byte order mark, a header row and CRLF line ends.
func WriteDir(t *testing.T, dir string, master, acftref []string) {
	t.Helper()
	files := map[string]string{
		"MASTER.txt":  fileContent(masterHeader, master),
		"ACFTREF.txt": fileContent(acftrefHeader, acftref),
	}
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
		if err != nil {
			t.Fatalf("Cannot write %s: %v", name, err)
		}
	}
}

// WriteZip writes an archive shaped like ReleasableAircraft.zip.
func WriteZip(t *testing.T, path string, master, acftref []string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Cannot create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	entries := []struct{ name, content string }{
		{"ACFTREF.txt", fileContent(acftrefHeader, acftref)},
		{"ENGINE.txt", fileContent("CODE,MFR,MODEL", nil)},
		{"MASTER.txt", fileContent(masterHeader, master)},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			t.Fatalf("Cannot add %s: %v", e.name, err)
		}
		if _, err = w.Write([]byte(e.content)); err != nil {
			t.Fatalf("Cannot write %s: %v", e.name, err)
		}
	}
	if err = zw.Close(); err != nil {
		t.Fatalf("Cannot close zip: %v", err)
	}
}

func fileContent(header string, lines []string) string {
	var sb strings.Builder
	sb.WriteString(bom)
	sb.WriteString(header)
	sb.WriteString("\r\n")
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteString("\r\n")
	}
	return sb.String()
}
