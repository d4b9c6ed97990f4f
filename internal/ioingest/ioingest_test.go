package ioingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gnames/gn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taillookup/taillookup/internal/iosource"
	"github.com/taillookup/taillookup/internal/iosqlite"
	"github.com/taillookup/taillookup/internal/iotesting"
	"github.com/taillookup/taillookup/pkg/config"
	"github.com/taillookup/taillookup/pkg/errcode"
	"github.com/taillookup/taillookup/pkg/store"
)

type fixture struct {
	master  []string
	acftref []string
}

func smallFixture(t *testing.T) fixture {
	return fixture{
		master: []string{
			iotesting.MasterLine(t, map[string]string{
				"n_number":   "172SP",
				"model_code": "X1",
				"year_mfr":   "2001",
			}),
			iotesting.MasterLine(t, map[string]string{
				"serial_number": "SN-2",
				"model_code":    "X1",
			}),
		},
		acftref: []string{
			iotesting.ModelLine(t, map[string]string{
				"code":  "X1",
				"mfr":   "CESSNA",
				"model": "172S",
			}),
		},
	}
}

func bigFixture(t *testing.T, n int) fixture {
	var res fixture
	for i := range n {
		res.master = append(res.master, iotesting.MasterLine(t, map[string]string{
			"n_number":   fmt.Sprintf("%dA", i+1),
			"model_code": "X1",
		}))
	}
	res.acftref = smallFixture(t).acftref
	return res
}

func run(
	t *testing.T,
	path string,
	fx fixture,
	opts ...config.Option,
) (*Report, error) {
	t.Helper()
	dir := t.TempDir()
	iotesting.WriteDir(t, dir, fx.master, fx.acftref)

	files, err := iosource.OpenPath(dir)
	require.NoError(t, err)
	defer files.Close()

	cfg := config.New()
	cfg.Update(opts)
	return New(cfg, iosqlite.NewBuilder(path)).Run(context.Background(), files)
}

func count(t *testing.T, path string) int {
	t.Helper()
	r, err := iosqlite.Open(context.Background(), path)
	require.NoError(t, err)
	defer r.Close()
	n, err := r.Count(context.Background())
	require.NoError(t, err)
	return n
}

func errCode(t *testing.T, err error) gn.ErrorCode {
	t.Helper()
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	return gnErr.Code
}

func TestRunSkipsBlankTail(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aircraft.db")

	rep, err := run(t, path, smallFixture(t))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Accepted)
	assert.Equal(t, 1, rep.Skipped)
	assert.Equal(t, 1, rep.Reasons[SkipEmptyTail])
	assert.Equal(t, 1, rep.ModelsAccepted)
	assert.NotEmpty(t, rep.SnapshotID)

	r, err := iosqlite.Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	row, err := r.Lookup(ctx, "172SP")
	require.NoError(t, err)
	require.NotNil(t, row.Manufacturer)
	assert.Equal(t, "CESSNA", *row.Manufacturer)
	require.NotNil(t, row.YearMfr)
	assert.Equal(t, 2001, *row.YearMfr)

	for key, val := range map[string]string{
		store.MetaSnapshotID:            rep.SnapshotID,
		store.MetaRegistrationsAccepted: "1",
		store.MetaRegistrationsSkipped:  "1",
		store.MetaModelsAccepted:        "1",
	} {
		got, ok, err := r.Metadata(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, key)
		assert.Equal(t, val, got, key)
	}
	updated, ok, err := r.Metadata(ctx, store.MetaLastUpdated)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, strings.HasSuffix(updated, "Z"))
}

func TestRunSkipsLongAndBlankLines(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "aircraft.db")
	fx := smallFixture(t)
	fx.master = []string{
		fx.master[0],
		"99999 " + strings.Repeat("x", 2<<20),
		"   ",
		iotesting.MasterLine(t, map[string]string{
			"n_number": "123AB", "model_code": "X1",
		}),
	}

	rep, err := run(t, path, fx)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Accepted)
	assert.Equal(t, 2, rep.Skipped)
	assert.Equal(t, 1, rep.Reasons[SkipLineTooLong])
	assert.Equal(t, 1, rep.Reasons[SkipBlankLine])

	r, err := iosqlite.Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()
	for _, key := range []string{"172SP", "123AB"} {
		_, err = r.Lookup(ctx, key)
		assert.NoError(t, err, key)
	}
	_, err = r.Lookup(ctx, "99999")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aircraft.db")
	fx := fixture{
		master: []string{
			iotesting.MasterLine(t, map[string]string{
				"n_number": "100", "model_code": "X1", "year_mfr": "1990",
			}),
			iotesting.MasterLine(t, map[string]string{
				"n_number": "100", "model_code": "X1", "year_mfr": "2020",
			}),
		},
		acftref: []string{
			iotesting.ModelLine(t, map[string]string{"code": "X1", "model": "OLD"}),
			iotesting.ModelLine(t, map[string]string{"mfr": "NO CODE"}),
			iotesting.ModelLine(t, map[string]string{"code": "X1", "model": "NEW"}),
		},
	}

	rep, err := run(t, path, fx)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Accepted)
	assert.Equal(t, 1, rep.Reasons[SkipDuplicateTail])
	assert.Equal(t, 1, rep.ModelsAccepted)
	assert.Equal(t, 1, rep.ModelsSkipped)
	assert.Equal(t, 1, rep.Reasons[SkipEmptyCode])
	assert.Equal(t, 1, rep.ModelsOverwritten)
	assert.Equal(t, 1, rep.Reasons[DuplicateCodeOverwritten])

	r, err := iosqlite.Open(context.Background(), path)
	require.NoError(t, err)
	defer r.Close()
	row, err := r.Lookup(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, 1990, *row.YearMfr, "first registration wins")
	assert.Equal(t, "NEW", *row.Model, "last model wins")
}

func TestRunIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aircraft.db")
	fx := smallFixture(t)

	first, err := run(t, path, fx)
	require.NoError(t, err)
	second, err := run(t, path, fx)
	require.NoError(t, err)

	assert.Equal(t, first.Accepted, second.Accepted)
	assert.Equal(t, first.Reasons, second.Reasons)
	assert.Equal(t, 1, second.Prior)
	assert.NotEqual(t, first.SnapshotID, second.SnapshotID)
	assert.Equal(t, 1, count(t, path))
}

func TestRunGuard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aircraft.db")
	_, err := run(t, path, bigFixture(t, 20))
	require.NoError(t, err)

	t.Run("truncated source is rejected", func(t *testing.T) {
		_, err := run(t, path, smallFixture(t))
		require.Error(t, err)
		assert.Equal(t, errcode.IngestTruncatedSnapshotError, errCode(t, err))
		assert.Equal(t, 20, count(t, path))
	})

	t.Run("empty source is rejected even with force", func(t *testing.T) {
		fx := smallFixture(t)
		fx.master = fx.master[1:]
		_, err := run(t, path, fx, config.OptIngestForce(true))
		require.Error(t, err)
		assert.Equal(t, errcode.IngestEmptySnapshotError, errCode(t, err))
		assert.Equal(t, 20, count(t, path))
	})

	t.Run("force publishes truncated source", func(t *testing.T) {
		rep, err := run(t, path, smallFixture(t), config.OptIngestForce(true))
		require.NoError(t, err)
		assert.Equal(t, 20, rep.Prior)
		assert.Equal(t, 1, count(t, path))
	})
}

func TestRunLeavesNoTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aircraft.db")
	_, err := run(t, path, bigFixture(t, 20))
	require.NoError(t, err)
	_, err = run(t, path, smallFixture(t))
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "aircraft.db", entries[0].Name())
}

func TestScan(t *testing.T) {
	long := strings.Repeat("x", maxLineSize+1)
	tests := []struct {
		msg       string
		input     string
		hasHeader bool
		want      []string
		skipped   []string
	}{
		{"header, bom and crlf", "\ufeffHEAD\r\nA\r\n\r\nB\r\n", true,
			[]string{"A", "B"}, []string{SkipBlankLine}},
		{"no header", "\ufeffA\nB", false, []string{"A", "B"}, nil},
		{"header only", "HEAD\n", true, nil, nil},
		{"empty", "", true, nil, nil},
		{"long line", "A\n" + long + "\nB\n", false,
			[]string{"A", "B"}, []string{SkipLineTooLong}},
		{"long last line", "A\n" + long, false,
			[]string{"A"}, []string{SkipLineTooLong}},
		{"line at limit", long[1:] + "\n", false, []string{long[1:]}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			var got, skipped []string
			err := scan(strings.NewReader(tt.input), tt.hasHeader,
				func(line string) error {
					got = append(got, line)
					return nil
				},
				func(reason string) {
					skipped = append(skipped, reason)
				})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.skipped, skipped)
		})
	}
}
