/*
Copyright © 2025 The taillookup Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"

	"github.com/taillookup/taillookup/internal/iopg"
	"github.com/taillookup/taillookup/internal/iosqlite"
	"github.com/taillookup/taillookup/pkg/config"
	"github.com/taillookup/taillookup/pkg/store"
)

const backendPostgres = "postgres"

// openReader opens the published snapshot of the configured backend.
func openReader(ctx context.Context, cfg *config.Config) (store.Reader, error) {
	if cfg.Store.Backend == backendPostgres {
		pool, err := iopg.Connect(ctx, cfg.Store.Postgres)
		if err != nil {
			return nil, err
		}
		return iopg.NewReader(pool), nil
	}
	return iosqlite.Open(ctx, cfg.SnapshotPath())
}

// newBuilder creates a snapshot builder. The returned function releases
// the backend connection.
func newBuilder(
	ctx context.Context,
	cfg *config.Config,
) (store.Builder, func(), error) {
	if cfg.Store.Backend == backendPostgres {
		pool, err := iopg.Connect(ctx, cfg.Store.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return iopg.NewBuilder(pool), pool.Close, nil
	}
	return iosqlite.NewBuilder(cfg.SnapshotPath()), func() {}, nil
}

// snapshotFile is the file replaced on publish, empty for PostgreSQL.
func snapshotFile(cfg *config.Config) string {
	if cfg.Store.Backend == backendPostgres {
		return ""
	}
	return cfg.SnapshotPath()
}

// snapshotName describes the snapshot location for users.
func snapshotName(cfg *config.Config) string {
	if cfg.Store.Backend == backendPostgres {
		pg := cfg.Store.Postgres
		return pg.User + "@" + pg.Host + "/" + pg.Database
	}
	return cfg.SnapshotPath()
}
