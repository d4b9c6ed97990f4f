package lookup_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taillookup/taillookup/internal/ioingest"
	"github.com/taillookup/taillookup/internal/iosource"
	"github.com/taillookup/taillookup/internal/iosqlite"
	"github.com/taillookup/taillookup/internal/iotesting"
	"github.com/taillookup/taillookup/pkg/config"
	"github.com/taillookup/taillookup/pkg/faa"
	"github.com/taillookup/taillookup/pkg/lookup"
	"github.com/taillookup/taillookup/pkg/store"
	"golang.org/x/sync/errgroup"
)

func ptr[T any](v T) *T { return &v }

// memReader keeps rows in a map and counts queries.
type memReader struct {
	rows    map[string]*store.Row
	meta    map[string]string
	pingErr error
	queries atomic.Int32
	closed  atomic.Bool
}

func newMemReader() *memReader {
	return &memReader{
		rows: map[string]*store.Row{
			"172SP": {
				NNumber:      "172SP",
				ModelCode:    ptr("2072738"),
				TypeAircraft: ptr("4"),
				TypeEngine:   ptr("1"),
				YearMfr:      ptr(2001),
				Manufacturer: ptr("CESSNA"),
				Model:        ptr("172S"),
				EngineCount:  ptr(1),
				SeatCount:    ptr(4),
			},
			"12345": {
				NNumber:      "12345",
				ModelCode:    ptr("NOSUCH1"),
				TypeAircraft: ptr("Z"),
				TypeEngine:   ptr("99"),
			},
		},
		meta: map[string]string{store.MetaLastUpdated: "2025-01-02T03:04:05Z"},
	}
}

var errClosed = errors.New("database is closed")

func (m *memReader) Lookup(_ context.Context, key string) (*store.Row, error) {
	m.queries.Add(1)
	if m.closed.Load() {
		return nil, errClosed
	}
	if row, ok := m.rows[key]; ok {
		return row, nil
	}
	return nil, store.ErrNotFound
}

func (m *memReader) LookupMany(
	_ context.Context,
	keys []string,
) (map[string]*store.Row, error) {
	m.queries.Add(1)
	res := make(map[string]*store.Row)
	for _, k := range keys {
		if row, ok := m.rows[k]; ok {
			res[k] = row
		}
	}
	return res, nil
}

func (m *memReader) Count(context.Context) (int, error) {
	return len(m.rows), nil
}

func (m *memReader) Metadata(_ context.Context, key string) (string, bool, error) {
	v, ok := m.meta[key]
	return v, ok, nil
}

func (m *memReader) Ping(context.Context) error { return m.pingErr }

func (m *memReader) Close() error {
	m.closed.Store(true)
	return nil
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	svc := lookup.New(newMemReader())

	for _, id := range []string{"N172SP", "172SP", "N-172SP", "n172sp"} {
		a, err := svc.Lookup(ctx, id)
		require.NoError(t, err, id)
		assert.Equal(t, "N172SP", a.TailNumber)
		assert.Equal(t, "172SP", a.NNumber)
		assert.Equal(t, "CESSNA", *a.Manufacturer)
		assert.Equal(t, "Fixed Wing Single-Engine", a.AircraftType)
		assert.Equal(t, "Reciprocating", a.EngineType)
		assert.Equal(t, 4, *a.NumSeats)
		assert.Equal(t, 2001, *a.YearMfr)
	}

	a, err := svc.Lookup(ctx, "N12345")
	require.NoError(t, err)
	assert.Nil(t, a.Manufacturer, "unmatched model stays absent")
	assert.Nil(t, a.Model)
	assert.Equal(t, faa.UnknownLabel, a.AircraftType)
	assert.Equal(t, faa.UnknownLabel, a.EngineType)

	_, err = svc.Lookup(ctx, "N99999")
	assert.ErrorIs(t, err, lookup.ErrNotFound)

	_, err = svc.Lookup(ctx, "N-")
	assert.ErrorIs(t, err, lookup.ErrInvalidTail)
}

func TestLookupUnavailable(t *testing.T) {
	svc := lookup.New(nil)
	_, err := svc.Lookup(context.Background(), "N172SP")
	assert.ErrorIs(t, err, lookup.ErrUnavailable)

	_, err = svc.Stats(context.Background())
	assert.ErrorIs(t, err, lookup.ErrUnavailable)
}

func TestBulk(t *testing.T) {
	for _, batched := range []bool{false, true} {
		t.Run(fmt.Sprintf("batched %v", batched), func(t *testing.T) {
			ctx := context.Background()
			svc := lookup.New(newMemReader(),
				lookup.OptBatched(batched), lookup.OptJobsNumber(3))

			ids := []string{"N99999", "n172sp", "--", "12345", "N172SP"}
			res, err := svc.Bulk(ctx, ids)
			require.NoError(t, err)
			assert.Equal(t, 5, res.Total)
			assert.Equal(t, 3, res.Found)
			require.Len(t, res.Results, 5)

			want := []struct{ tail, err string }{
				{"N99999", lookup.MsgNotFound},
				{"N172SP", ""},
				{"--", lookup.MsgInvalidTail},
				{"N12345", ""},
				{"N172SP", ""},
			}
			for i, w := range want {
				assert.Equal(t, w.tail, res.Results[i].TailNumber, i)
				assert.Equal(t, w.err, res.Results[i].Error, i)
			}
		})
	}
}

func TestBulkEmpty(t *testing.T) {
	res, err := lookup.New(nil).Bulk(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0, res.Found)
	assert.NotNil(t, res.Results)
	assert.Empty(t, res.Results)
}

func TestBulkTooMany(t *testing.T) {
	r := newMemReader()
	svc := lookup.New(r)

	ids := slices.Repeat([]string{"N172SP"}, lookup.MaxBulk+1)
	_, err := svc.Bulk(context.Background(), ids)
	assert.ErrorIs(t, err, lookup.ErrTooMany)
	assert.Equal(t, int32(0), r.queries.Load(), "no item is processed")

	res, err := svc.Bulk(context.Background(), ids[:lookup.MaxBulk])
	require.NoError(t, err)
	assert.Equal(t, lookup.MaxBulk, res.Found)

	svc = lookup.New(r, lookup.OptBulkLimit(2))
	_, err = svc.Bulk(context.Background(), ids[:3])
	assert.ErrorIs(t, err, lookup.ErrTooMany)
}

func TestHealth(t *testing.T) {
	ctx := context.Background()

	h := lookup.New(newMemReader()).Health(ctx)
	assert.True(t, h.Healthy())
	assert.True(t, h.DatabaseExists)
	assert.Equal(t, 2, h.RecordCount)
	require.NotNil(t, h.LastUpdated)
	assert.Equal(t, "2025-01-02T03:04:05Z", *h.LastUpdated)

	empty := newMemReader()
	empty.rows = map[string]*store.Row{}
	h = lookup.New(empty).Health(ctx)
	assert.Equal(t, lookup.StatusUnhealthy, h.Status)
	assert.True(t, h.DatabaseExists)

	broken := newMemReader()
	broken.pingErr = errors.New("gone")
	h = lookup.New(broken).Health(ctx)
	assert.False(t, h.Healthy())
	assert.False(t, h.DatabaseExists)

	h = lookup.New(nil).Health(ctx)
	assert.Equal(t, lookup.StatusUnhealthy, h.Status)
	assert.False(t, h.DatabaseExists)
	assert.Nil(t, h.LastUpdated)
}

func TestSwap(t *testing.T) {
	ctx := context.Background()
	svc := lookup.New(nil)
	assert.False(t, svc.Ready())
	assert.False(t, svc.Health(ctx).Healthy())

	first := newMemReader()
	require.NoError(t, svc.Swap(first))
	assert.True(t, svc.Ready())
	assert.True(t, svc.Health(ctx).Healthy())

	second := newMemReader()
	delete(second.rows, "172SP")
	require.NoError(t, svc.Swap(second))
	assert.True(t, first.closed.Load(), "idle reader is closed at once")

	_, err := svc.Lookup(ctx, "N172SP")
	assert.ErrorIs(t, err, lookup.ErrNotFound)

	require.NoError(t, svc.Close())
	assert.True(t, second.closed.Load())
	assert.False(t, svc.Ready())
	_, err = svc.Lookup(ctx, "N172SP")
	assert.ErrorIs(t, err, lookup.ErrUnavailable)
}

// blockingReader holds Lookup until release is closed.
type blockingReader struct {
	*memReader
	started chan struct{}
	release chan struct{}
}

func (b *blockingReader) Lookup(ctx context.Context, key string) (*store.Row, error) {
	close(b.started)
	<-b.release
	return b.memReader.Lookup(ctx, key)
}

func TestSwapWaitsForQueries(t *testing.T) {
	ctx := context.Background()
	old := &blockingReader{
		memReader: newMemReader(),
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	svc := lookup.New(old)

	done := make(chan error, 1)
	go func() {
		a, err := svc.Lookup(ctx, "N172SP")
		if err == nil && *a.Manufacturer != "CESSNA" {
			err = fmt.Errorf("unexpected manufacturer %s", *a.Manufacturer)
		}
		done <- err
	}()
	<-old.started

	next := newMemReader()
	delete(next.rows, "172SP")
	require.NoError(t, svc.Swap(next))
	assert.False(t, old.closed.Load(), "reader in use stays open")

	_, err := svc.Lookup(ctx, "N172SP")
	assert.ErrorIs(t, err, lookup.ErrNotFound, "new queries use the new reader")

	close(old.release)
	require.NoError(t, <-done)
	assert.True(t, old.closed.Load(), "closed after the last query")
	assert.False(t, next.closed.Load())
}

func TestSwapConcurrent(t *testing.T) {
	ctx := context.Background()
	svc := lookup.New(newMemReader())

	var readers []*memReader
	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			for range 100 {
				if _, err := svc.Lookup(ctx, "N172SP"); err != nil {
					return err
				}
			}
			return nil
		})
	}
	for range 20 {
		r := newMemReader()
		readers = append(readers, r)
		require.NoError(t, svc.Swap(r))
	}
	require.NoError(t, g.Wait())

	for _, r := range readers[:len(readers)-1] {
		assert.True(t, r.closed.Load())
	}
	assert.False(t, readers[len(readers)-1].closed.Load())
}

func TestLookupAfterIngest(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aircraft.db")

	b := iosqlite.NewBuilder(path)
	require.NoError(t, b.Begin(ctx))
	_, err := b.LoadModels(ctx, slices.Values([]faa.AircraftModel{
		{Code: "X1", Manufacturer: ptr("CESSNA"), Model: ptr("172S")},
	}))
	require.NoError(t, err)
	_, err = b.LoadRegistrations(ctx, slices.Values([]faa.Registration{
		{NNumber: "172SP", ModelCode: ptr("X1")},
		{NNumber: "ORPHN", ModelCode: ptr("NOPE")},
	}))
	require.NoError(t, err)
	require.NoError(t, b.BuildIndexes(ctx))
	require.NoError(t, b.SetMetadata(ctx, map[string]string{
		store.MetaLastUpdated: "2025-01-02T03:04:05Z",
	}))
	require.NoError(t, b.Publish(ctx))

	r, err := iosqlite.Open(ctx, path)
	require.NoError(t, err)
	svc := lookup.New(r)
	defer svc.Close()

	a, err := svc.Lookup(ctx, "172sp")
	require.NoError(t, err)
	assert.Equal(t, "CESSNA", *a.Manufacturer)

	a, err = svc.Lookup(ctx, "n-orphn")
	require.NoError(t, err)
	assert.Equal(t, "NORPHN", a.TailNumber)
	assert.Nil(t, a.Manufacturer)

	res, err := svc.Bulk(ctx, []string{"N172SP", "N0"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Found)

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.RecordCount)
	assert.Equal(t, "2025-01-02T03:04:05Z", *st.LastUpdated)
}

func TestLookupAfterRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	iotesting.WriteDir(t, dir,
		[]string{
			iotesting.MasterLine(t, map[string]string{
				"n_number": "172SP", "model_code": "X1", "year_mfr": "2001",
				"type_aircraft": "4", "type_engine": "1",
			}),
			iotesting.MasterLine(t, map[string]string{
				"n_number": "123AB", "model_code": "NOPE",
			}),
		},
		[]string{
			iotesting.ModelLine(t, map[string]string{
				"code": "X1", "mfr": "CESSNA", "model": "172S",
				"no_eng": "01", "no_seats": "004",
			}),
		},
	)
	files, err := iosource.OpenPath(dir)
	require.NoError(t, err)
	defer files.Close()

	path := filepath.Join(t.TempDir(), "aircraft.db")
	rep, err := ioingest.New(config.New(), iosqlite.NewBuilder(path)).Run(ctx, files)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Accepted)

	r, err := iosqlite.Open(ctx, path)
	require.NoError(t, err)
	svc := lookup.New(r)
	defer svc.Close()

	a, err := svc.Lookup(ctx, "172sp")
	require.NoError(t, err)
	assert.Equal(t, "N172SP", a.TailNumber)
	require.NotNil(t, a.Manufacturer)
	assert.Equal(t, "CESSNA", *a.Manufacturer)
	assert.Equal(t, "172S", *a.Model)
	assert.Equal(t, 2001, *a.YearMfr)
	assert.Equal(t, 4, *a.NumSeats)

	a, err = svc.Lookup(ctx, "N-123ab")
	require.NoError(t, err)
	assert.Nil(t, a.Model)

	h := svc.Health(ctx)
	assert.True(t, h.Healthy())
	assert.Equal(t, 2, h.RecordCount)
}
