package iosqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taillookup/taillookup/pkg/errcode"
	"github.com/taillookup/taillookup/pkg/faa"
	"github.com/taillookup/taillookup/pkg/store"
)

func ptr[T any](v T) *T { return &v }

func testModels() []faa.AircraftModel {
	return []faa.AircraftModel{
		{
			Code:         "2072738",
			Manufacturer: ptr("CESSNA"),
			Model:        ptr("172S"),
			TypeAircraft: ptr("4"),
			TypeEngine:   ptr("1"),
			EngineCount:  ptr(1),
			SeatCount:    ptr(4),
		},
		{
			Code:         "05623MC",
			Manufacturer: ptr("BOEING"),
			Model:        ptr("737-800"),
		},
	}
}

func testRegistrations() []faa.Registration {
	return []faa.Registration{
		{
			NNumber:      "172SP",
			ModelCode:    ptr("2072738"),
			TypeAircraft: ptr("4"),
			TypeEngine:   ptr("1"),
			YearMfr:      ptr(2001),
			SeatCount:    ptr(2),
		},
		{
			NNumber:      "12345",
			ModelCode:    ptr("NOSUCH1"),
			TypeAircraft: ptr("5"),
			TypeEngine:   ptr("5"),
			EngineCount:  ptr(2),
		},
		{
			NNumber:      "9Z",
			TypeAircraft: ptr("1"),
		},
	}
}

func build(
	t *testing.T,
	path string,
	models []faa.AircraftModel,
	regs []faa.Registration,
) {
	t.Helper()
	ctx := context.Background()
	b := NewBuilder(path)
	defer b.Abort()

	require.NoError(t, b.Begin(ctx))
	n, err := b.LoadModels(ctx, slices.Values(models))
	require.NoError(t, err)
	assert.Equal(t, len(models), n)
	n, err = b.LoadRegistrations(ctx, slices.Values(regs))
	require.NoError(t, err)
	assert.Equal(t, len(regs), n)
	require.NoError(t, b.BuildIndexes(ctx))
	require.NoError(t, b.SetMetadata(ctx, map[string]string{
		store.MetaLastUpdated: "2025-01-02T03:04:05Z",
	}))
	require.NoError(t, b.Publish(ctx))
}

func TestBuildAndLookup(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aircraft.db")
	build(t, path, testModels(), testRegistrations())

	r, err := Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	row, err := r.Lookup(ctx, "172SP")
	require.NoError(t, err)
	assert.Equal(t, "172SP", row.NNumber)
	require.NotNil(t, row.Manufacturer)
	assert.Equal(t, "CESSNA", *row.Manufacturer)
	assert.Equal(t, "172S", *row.Model)
	assert.Nil(t, row.Series)
	require.NotNil(t, row.SeatCount)
	assert.Equal(t, 4, *row.SeatCount, "reference seat count wins")
	require.NotNil(t, row.YearMfr)
	assert.Equal(t, 2001, *row.YearMfr)

	row, err = r.Lookup(ctx, "12345")
	require.NoError(t, err)
	assert.Nil(t, row.Manufacturer)
	assert.Nil(t, row.Model)
	require.NotNil(t, row.ModelCode)
	assert.Equal(t, "NOSUCH1", *row.ModelCode)
	require.NotNil(t, row.EngineCount)
	assert.Equal(t, 2, *row.EngineCount, "registration count as fallback")
	assert.Nil(t, row.SeatCount)

	row, err = r.Lookup(ctx, "9Z")
	require.NoError(t, err)
	assert.Nil(t, row.ModelCode)
	assert.Nil(t, row.YearMfr)

	_, err = r.Lookup(ctx, "NOPE")
	assert.ErrorIs(t, err, store.ErrNotFound)

	count, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	val, ok, err := r.Metadata(ctx, store.MetaLastUpdated)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "2025-01-02T03:04:05Z", val)

	_, ok, err = r.Metadata(ctx, "no_such_key")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, r.Ping(ctx))
}

func TestLookupMany(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aircraft.db")
	build(t, path, testModels(), testRegistrations())

	r, err := Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	res, err := r.LookupMany(ctx, []string{"9Z", "NOPE", "172SP", "172SP"})
	require.NoError(t, err)
	assert.Len(t, res, 2)
	assert.Contains(t, res, "9Z")
	assert.Contains(t, res, "172SP")
	assert.Equal(t, "CESSNA", *res["172SP"].Manufacturer)

	res, err = r.LookupMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestModelIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aircraft.db")
	build(t, path, testModels(), testRegistrations())

	db, err := sql.Open(driverName, path)
	require.NoError(t, err)
	defer db.Close()

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master
		WHERE type = 'index' AND tbl_name = 'registrations'
		AND sql LIKE '%model_code%'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "idx_registrations_model_code", name)

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "delete", mode)
}

func TestRebuildIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aircraft.db")

	for range 2 {
		build(t, path, testModels(), testRegistrations())
		r, err := Open(ctx, path)
		require.NoError(t, err)
		count, err := r.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		require.NoError(t, r.Close())
	}
}

func TestAbortKeepsPublished(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "aircraft.db")
	build(t, path, testModels(), testRegistrations())

	b := NewBuilder(path)
	require.NoError(t, b.Begin(ctx))
	_, err := b.LoadRegistrations(ctx, slices.Values(testRegistrations()[:1]))
	require.NoError(t, err)
	require.NoError(t, b.Abort())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files are removed")
	assert.Equal(t, "aircraft.db", entries[0].Name())

	r, err := Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()
	count, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	assert.NoError(t, b.Abort(), "second abort does nothing")
}

func TestOpenReaderSurvivesPublish(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aircraft.db")
	build(t, path, testModels(), testRegistrations())

	old, err := Open(ctx, path)
	require.NoError(t, err)
	defer old.Close()

	build(t, path, testModels(), testRegistrations()[:1])

	count, err := old.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	fresh, err := Open(ctx, path)
	require.NoError(t, err)
	defer fresh.Close()
	count, err = fresh.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPriorCount(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "aircraft.db")

	n, err := NewBuilder(path).PriorCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	build(t, path, testModels(), testRegistrations())
	n, err = NewBuilder(path).PriorCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	junk := filepath.Join(dir, "junk.db")
	require.NoError(t, os.WriteFile(junk, []byte("not a database"), 0644))
	n, err = NewBuilder(junk).PriorCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)

	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.StoreOpenError, gnErr.Code)
	assert.ErrorIs(t, gnErr.Err, os.ErrNotExist)
}

func TestBuilderNotStarted(t *testing.T) {
	b := NewBuilder(filepath.Join(t.TempDir(), "aircraft.db"))
	err := b.BuildIndexes(context.Background())
	require.Error(t, err)

	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.StoreNotConnectedError, gnErr.Code)
}
