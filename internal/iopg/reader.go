package iopg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taillookup/taillookup/pkg/store"
)

type reader struct {
	pool *pgxpool.Pool
}

// NewReader wraps an open pool. Closing the reader closes the pool.
func NewReader(pool *pgxpool.Pool) store.Reader {
	return &reader{pool: pool}
}

func (r *reader) Lookup(ctx context.Context, nNumber string) (*store.Row, error) {
	row := r.pool.QueryRow(ctx, selectAircraft+" WHERE r.n_number = $1", nNumber)
	res, err := scanRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, QueryError(err)
	}
	return res, nil
}

func (r *reader) LookupMany(
	ctx context.Context,
	nNumbers []string,
) (map[string]*store.Row, error) {
	res := make(map[string]*store.Row, len(nNumbers))
	if len(nNumbers) == 0 {
		return res, nil
	}

	rows, err := r.pool.Query(ctx,
		selectAircraft+" WHERE r.n_number = ANY($1)", nNumbers)
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
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+tableRegistrations).
		Scan(&res)
	if err != nil {
		return 0, QueryError(err)
	}
	return res, nil
}

func (r *reader) Metadata(ctx context.Context, key string) (string, bool, error) {
	var res string
	err := r.pool.QueryRow(ctx,
		"SELECT value FROM "+tableMetadata+" WHERE key = $1", key).Scan(&res)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, QueryError(err)
	}
	return res, true, nil
}

func (r *reader) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return QueryError(err)
	}
	return nil
}

func (r *reader) Close() error {
	r.pool.Close()
	return nil
}

func scanRow(s pgx.Row) (*store.Row, error) {
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
