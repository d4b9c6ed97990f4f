package iopg

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/taillookup/taillookup/pkg/faa"
	"github.com/taillookup/taillookup/pkg/store"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// builder loads a snapshot into *_next tables and swaps them with the
// live tables in one transaction.
type builder struct {
	pool *pgxpool.Pool
}

// NewBuilder creates a snapshot builder on an open pool.
func NewBuilder(pool *pgxpool.Pool) store.Builder {
	return &builder{pool: pool}
}

// Begin drops leftovers of an unfinished build and creates empty
// *_next tables from the GORM models.
func (b *builder) Begin(ctx context.Context) error {
	if b.pool == nil {
		return NotConnectedError()
	}
	if err := b.dropNext(ctx); err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(b.pool)
	defer db.Close()

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: db}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return GORMConnectionError(err)
	}

	for _, t := range tables {
		name := t.name + nextSuffix
		err = gormDB.WithContext(ctx).Table(name).AutoMigrate(t.model)
		if err != nil {
			return SchemaError(name, err)
		}
	}
	return nil
}

func (b *builder) dropNext(ctx context.Context) error {
	for _, t := range tables {
		name := t.name + nextSuffix
		q := fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", name)
		if _, err := b.pool.Exec(ctx, q); err != nil {
			return SchemaError(name, err)
		}
	}
	return nil
}

// PriorCount counts registrations in the live table, if it exists.
func (b *builder) PriorCount(ctx context.Context) (int, error) {
	if b.pool == nil {
		return 0, NotConnectedError()
	}

	var exists bool
	err := b.pool.QueryRow(ctx,
		"SELECT to_regclass($1) IS NOT NULL", tableRegistrations).Scan(&exists)
	if err != nil {
		return 0, QueryError(err)
	}
	if !exists {
		return 0, nil
	}

	var res int
	err = b.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM "+tableRegistrations).Scan(&res)
	if err != nil {
		return 0, QueryError(err)
	}
	return res, nil
}

// LoadModels copies aircraft models into the next table. COPY cannot
// replace rows, so repeated codes are resolved here with the last one
// winning.
func (b *builder) LoadModels(
	ctx context.Context,
	models iter.Seq[faa.AircraftModel],
) (int, error) {
	idx := make(map[string]int)
	var rows [][]any
	for m := range models {
		vals := []any{
			m.Code, m.Manufacturer, m.Model, m.Series, m.TypeAircraft,
			m.TypeEngine, m.Category, m.BuilderCert, m.EngineCount,
			m.SeatCount, m.Weight, m.Speed, m.TCDataSheet, m.TCDataHolder,
		}
		if i, ok := idx[m.Code]; ok {
			rows[i] = vals
			continue
		}
		idx[m.Code] = len(rows)
		rows = append(rows, vals)
	}

	return b.copy(ctx, tableModels, modelColumns, pgx.CopyFromRows(rows))
}

// LoadRegistrations streams registrations into the next table.
func (b *builder) LoadRegistrations(
	ctx context.Context,
	regs iter.Seq[faa.Registration],
) (int, error) {
	next, stop := iter.Pull(regs)
	defer stop()

	src := pgx.CopyFromFunc(func() ([]any, error) {
		r, ok := next()
		if !ok {
			return nil, nil
		}
		return []any{
			r.NNumber, r.SerialNumber, r.ModelCode, r.EngineModelCode,
			r.YearMfr, r.TypeRegistrant, r.Name, r.Street, r.Street2,
			r.City, r.State, r.ZipCode, r.Region, r.County, r.Country,
			r.LastActionDate, r.CertIssueDate, r.Certification,
			r.TypeAircraft, r.TypeEngine, r.StatusCode, r.ModeSCode,
			r.ModeSCodeHex, r.FractOwner, r.AirWorthDate, r.OtherNames,
			r.ExpirationDate, r.UniqueID, r.KitMfr, r.KitModel,
			r.EngineCount, r.SeatCount,
		}, nil
	})

	return b.copy(ctx, tableRegistrations, registrationColumns, src)
}

func (b *builder) copy(
	ctx context.Context,
	table string,
	columns []string,
	src pgx.CopyFromSource,
) (int, error) {
	if b.pool == nil {
		return 0, NotConnectedError()
	}
	name := table + nextSuffix

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return 0, LoadError(name, err)
	}
	defer tx.Rollback(ctx)

	n, err := tx.CopyFrom(ctx, pgx.Identifier{name}, columns, src)
	if err != nil {
		return 0, LoadError(name, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, LoadError(name, err)
	}
	return int(n), nil
}

// BuildIndexes creates the model code index on the next table.
func (b *builder) BuildIndexes(ctx context.Context) error {
	if b.pool == nil {
		return NotConnectedError()
	}
	queries := []string{
		fmt.Sprintf("CREATE INDEX %s%s ON %s%s (model_code)",
			indexModelCode, nextSuffix, tableRegistrations, nextSuffix),
		"ANALYZE " + tableModels + nextSuffix,
		"ANALYZE " + tableRegistrations + nextSuffix,
	}
	for _, q := range queries {
		if _, err := b.pool.Exec(ctx, q); err != nil {
			return IndexError(err)
		}
	}
	return nil
}

// SetMetadata replaces rows of the next metadata table.
func (b *builder) SetMetadata(ctx context.Context, meta map[string]string) error {
	if b.pool == nil {
		return NotConnectedError()
	}

	rows := make([][]any, 0, len(meta))
	for k, v := range meta {
		rows = append(rows, []any{k, v})
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return MetadataError(err)
	}
	defer tx.Rollback(ctx)

	if _, err = tx.Exec(ctx, "DELETE FROM "+tableMetadata+nextSuffix); err != nil {
		return MetadataError(err)
	}
	_, err = tx.CopyFrom(ctx, pgx.Identifier{tableMetadata + nextSuffix},
		[]string{"key", "value"}, pgx.CopyFromRows(rows))
	if err != nil {
		return MetadataError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return MetadataError(err)
	}
	return nil
}

// Publish replaces live tables with the next ones. Queries running on
// the old tables finish before the swap takes its locks.
func (b *builder) Publish(ctx context.Context) error {
	if b.pool == nil {
		return NotConnectedError()
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return PublishError(err)
	}
	defer tx.Rollback(ctx)

	var queries []string
	for _, t := range tables {
		queries = append(queries,
			fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", t.name),
			fmt.Sprintf("ALTER TABLE %s%s RENAME TO %s", t.name, nextSuffix, t.name),
			fmt.Sprintf("ALTER TABLE %s RENAME CONSTRAINT %s%s_pkey TO %s_pkey",
				t.name, t.name, nextSuffix, t.name),
		)
	}
	queries = append(queries, fmt.Sprintf("ALTER INDEX %s%s RENAME TO %s",
		indexModelCode, nextSuffix, indexModelCode))

	for _, q := range queries {
		if _, err = tx.Exec(ctx, q); err != nil {
			return PublishError(err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return PublishError(err)
	}
	slog.Info("Published postgres snapshot")
	return nil
}

// Abort drops the next tables. After Publish they no longer exist and
// nothing happens.
func (b *builder) Abort() error {
	if b.pool == nil {
		return nil
	}
	return b.dropNext(context.Background())
}
