// Package iosqlite keeps registry snapshots in a single SQLite file.
// This is an impure I/O package that implements contracts
// defined in pkg/store.
package iosqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/taillookup/taillookup/pkg/faa"
	"github.com/taillookup/taillookup/pkg/store"
	_ "modernc.org/sqlite"
)

// builder writes a snapshot into a temporary file next to the target
// and renames it over the target on Publish.
type builder struct {
	path    string
	tmpPath string
	db      *sql.DB
}

// NewBuilder creates a snapshot builder for the file at path.
func NewBuilder(path string) store.Builder {
	return &builder{path: path}
}

// Begin creates a fresh temporary database with empty tables.
func (b *builder) Begin(ctx context.Context) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return OpenError(dir, err)
	}

	b.tmpPath = filepath.Join(
		dir,
		fmt.Sprintf(".%s.%s.tmp", filepath.Base(b.path), uuid.NewString()[:8]),
	)

	db, err := sql.Open(driverName, b.tmpPath)
	if err != nil {
		return OpenError(b.tmpPath, err)
	}
	// A single connection keeps per-connection pragmas in effect.
	db.SetMaxOpenConns(1)
	b.db = db

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=OFF",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return OpenError(b.tmpPath, err)
		}
	}

	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return SchemaError(err)
	}

	slog.Debug("Started sqlite snapshot", "tmp", b.tmpPath)
	return nil
}

// PriorCount reads the registration count of the published file.
// A missing or unreadable file counts as an empty snapshot.
func (b *builder) PriorCount(ctx context.Context) (int, error) {
	if _, err := os.Stat(b.path); errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}

	r, err := Open(ctx, b.path)
	if err != nil {
		slog.Warn("Cannot read previous snapshot", "path", b.path, "error", err)
		return 0, nil
	}
	defer r.Close()

	res, err := r.Count(ctx)
	if err != nil {
		slog.Warn("Cannot count previous snapshot", "path", b.path, "error", err)
		return 0, nil
	}
	return res, nil
}

// LoadModels inserts aircraft models in one transaction. A repeated code
// replaces the earlier row.
func (b *builder) LoadModels(
	ctx context.Context,
	models iter.Seq[faa.AircraftModel],
) (int, error) {
	return load(ctx, b, "aircraft_models", insertModelSQL, models,
		func(m faa.AircraftModel) []any {
			return []any{
				m.Code, val(m.Manufacturer), val(m.Model), val(m.Series),
				val(m.TypeAircraft), val(m.TypeEngine), val(m.Category),
				val(m.BuilderCert), val(m.EngineCount), val(m.SeatCount),
				val(m.Weight), val(m.Speed), val(m.TCDataSheet),
				val(m.TCDataHolder),
			}
		})
}

// LoadRegistrations inserts registrations in one transaction.
func (b *builder) LoadRegistrations(
	ctx context.Context,
	regs iter.Seq[faa.Registration],
) (int, error) {
	return load(ctx, b, "registrations", insertRegistrationSQL, regs,
		func(r faa.Registration) []any {
			return []any{
				r.NNumber, val(r.SerialNumber), val(r.ModelCode),
				val(r.EngineModelCode), val(r.YearMfr), val(r.TypeRegistrant),
				val(r.Name), val(r.Street), val(r.Street2), val(r.City),
				val(r.State), val(r.ZipCode), val(r.Region), val(r.County),
				val(r.Country), val(r.LastActionDate), val(r.CertIssueDate),
				val(r.Certification), val(r.TypeAircraft), val(r.TypeEngine),
				val(r.StatusCode), val(r.ModeSCode), val(r.ModeSCodeHex),
				val(r.FractOwner), val(r.AirWorthDate), val(r.OtherNames),
				val(r.ExpirationDate), val(r.UniqueID), val(r.KitMfr),
				val(r.KitModel), val(r.EngineCount), val(r.SeatCount),
			}
		})
}

func load[T any](
	ctx context.Context,
	b *builder,
	table, query string,
	rows iter.Seq[T],
	values func(T) []any,
) (int, error) {
	if b.db == nil {
		return 0, NotConnectedError()
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, LoadError(table, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, LoadError(table, err)
	}
	defer stmt.Close()

	var count int
	for row := range rows {
		if _, err = stmt.ExecContext(ctx, values(row)...); err != nil {
			return 0, LoadError(table, err)
		}
		count++
	}

	if err = tx.Commit(); err != nil {
		return 0, LoadError(table, err)
	}
	return count, nil
}

// val turns a nullable field into a driver value.
func val[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// BuildIndexes creates the model code index and refreshes planner
// statistics.
func (b *builder) BuildIndexes(ctx context.Context) error {
	if b.db == nil {
		return NotConnectedError()
	}
	for _, idx := range indexes {
		if _, err := b.db.ExecContext(ctx, idx); err != nil {
			return IndexError(err)
		}
	}
	return nil
}

// SetMetadata replaces all metadata rows.
func (b *builder) SetMetadata(ctx context.Context, meta map[string]string) error {
	if b.db == nil {
		return NotConnectedError()
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return MetadataError(err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, "DELETE FROM metadata"); err != nil {
		return MetadataError(err)
	}
	for k, v := range meta {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO metadata (key, value) VALUES (?, ?)", k, v)
		if err != nil {
			return MetadataError(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return MetadataError(err)
	}
	return nil
}

// Publish folds the write-ahead log into the file, closes it, and renames
// it over the target. Readers that still hold the old file keep reading
// it until they close.
func (b *builder) Publish(ctx context.Context) error {
	if b.db == nil {
		return NotConnectedError()
	}

	finalize := []string{
		"PRAGMA wal_checkpoint(TRUNCATE)",
		"PRAGMA journal_mode=DELETE",
	}
	for _, q := range finalize {
		if _, err := b.db.ExecContext(ctx, q); err != nil {
			return PublishError(b.path, err)
		}
	}

	err := b.db.Close()
	b.db = nil
	if err != nil {
		return PublishError(b.path, err)
	}

	if err = os.Rename(b.tmpPath, b.path); err != nil {
		return PublishError(b.path, err)
	}

	slog.Info("Published sqlite snapshot", "path", b.path)
	b.tmpPath = ""
	return nil
}

// Abort closes and removes the temporary file.
func (b *builder) Abort() error {
	var errs []error
	if b.db != nil {
		errs = append(errs, b.db.Close())
		b.db = nil
	}
	if b.tmpPath != "" {
		for _, suffix := range []string{"", "-wal", "-shm"} {
			err := os.Remove(b.tmpPath + suffix)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
		}
		b.tmpPath = ""
	}
	return errors.Join(errs...)
}
