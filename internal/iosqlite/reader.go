package iosqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"runtime"
	"strings"

	"github.com/taillookup/taillookup/pkg/store"
)

type reader struct {
	path string
	db   *sql.DB
}

// Open opens a published snapshot read-only. The file must exist.
func Open(ctx context.Context, path string) (store.Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, OpenError(path, err)
	}

	dsn := "file:" + path + "?mode=ro&_pragma=query_only(1)"
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, OpenError(path, err)
	}
	db.SetMaxOpenConns(runtime.NumCPU() * 2)
	db.SetMaxIdleConns(runtime.NumCPU() * 2)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, OpenError(path, err)
	}

	return &reader{path: path, db: db}, nil
}

// Lookup returns store.ErrNotFound when the tail number is absent.
func (r *reader) Lookup(ctx context.Context, nNumber string) (*store.Row, error) {
	row := r.db.QueryRowContext(ctx, selectAircraft+" WHERE r.n_number = ?", nNumber)
	res, err := scanRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, QueryError(err)
	}
	return res, nil
}

// LookupMany fetches all requested tail numbers with one IN query.
func (r *reader) LookupMany(
	ctx context.Context,
	nNumbers []string,
) (map[string]*store.Row, error) {
	res := make(map[string]*store.Row, len(nNumbers))
	if len(nNumbers) == 0 {
		return res, nil
	}

	args := make([]any, len(nNumbers))
	for i, v := range nNumbers {
		args[i] = v
	}
	q := selectAircraft + " WHERE r.n_number IN (?" +
		strings.Repeat(", ?", len(nNumbers)-1) + ")"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, QueryError(err)
	}
	defer rows.Close()

	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, QueryError(err)
		}
		res[row.NNumber] = row
	}
	if err = rows.Err(); err != nil {
		return nil, QueryError(err)
	}
	return res, nil
}

func (r *reader) Count(ctx context.Context) (int, error) {
	var res int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM registrations").
		Scan(&res)
	if err != nil {
		return 0, QueryError(err)
	}
	return res, nil
}

func (r *reader) Metadata(ctx context.Context, key string) (string, bool, error) {
	var res string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM metadata WHERE key = ?", key).Scan(&res)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, QueryError(err)
	}
	return res, true, nil
}

func (r *reader) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return QueryError(err)
	}
	return nil
}

// Close waits for running queries to finish and releases the file.
func (r *reader) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (*store.Row, error) {
	var res store.Row
	err := s.Scan(
		&res.NNumber, &res.ModelCode, &res.TypeAircraft, &res.TypeEngine,
		&res.YearMfr, &res.Manufacturer, &res.Model, &res.Series,
		&res.EngineCount, &res.SeatCount,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
