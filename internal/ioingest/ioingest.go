// Package ioingest turns registry files into a published snapshot.
// Lines are parsed with the built-in layouts, invalid rows are skipped
// and tallied, and the snapshot is published only when it passes the
// size check against the previous one.
package ioingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/gnames/gnfmt"
	"github.com/google/uuid"
	"github.com/taillookup/taillookup/internal/iosource"
	"github.com/taillookup/taillookup/pkg/config"
	"github.com/taillookup/taillookup/pkg/faa"
	"github.com/taillookup/taillookup/pkg/fixedwidth"
	"github.com/taillookup/taillookup/pkg/store"
	"golang.org/x/sync/errgroup"
)

// Reasons for skipped rows.
const (
	SkipEmptyTail     = "empty_tail"
	SkipDuplicateTail = "duplicate_tail"
	SkipEmptyCode     = "empty_code"
	SkipLineTooLong   = "line_too_long"
	SkipBlankLine     = "blank_line"

	// DuplicateCodeOverwritten counts model rows that replaced an earlier
	// row with the same code. They are not skips.
	DuplicateCodeOverwritten = "duplicate_code_overwritten"
)

const (
	bom         = "\ufeff"
	maxLineSize = 1024 * 1024
	chanSize    = 1024
)

// Report summarizes one ingestion run.
type Report struct {
	// Accepted is the number of stored registrations.
	Accepted int
	// Skipped is the number of registration rows that were not stored.
	Skipped int
	// Reasons tallies skipped and overwritten rows by reason.
	Reasons map[string]int

	ModelsAccepted    int
	ModelsSkipped     int
	ModelsOverwritten int

	// Prior is the number of registrations in the snapshot that was
	// published before this run.
	Prior      int
	SnapshotID string
	Origin     string
	Elapsed    time.Duration
}

func (r *Report) tally(reason string) {
	r.Reasons[reason]++
}

// Ingester builds snapshots with a store.Builder.
type Ingester struct {
	cfg     config.IngestConfig
	builder store.Builder
}

// New creates an Ingester that writes with the given builder.
func New(cfg *config.Config, b store.Builder) *Ingester {
	return &Ingester{cfg: cfg.Ingest, builder: b}
}

// Run parses registry files and publishes a new snapshot. On any error
// the unpublished snapshot is discarded and the previous one stays in
// place.
func (in *Ingester) Run(
	ctx context.Context,
	files *iosource.Files,
) (*Report, error) {
	start := time.Now()
	res := &Report{Reasons: make(map[string]int), Origin: files.Origin}

	master, acftref, err := faa.Layouts()
	if err != nil {
		return nil, LayoutError(err)
	}

	if err = in.builder.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := in.builder.Abort(); err != nil {
			slog.Warn("Cannot remove unpublished snapshot", "error", err)
		}
	}()

	res.Prior, err = in.builder.PriorCount(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("Starting ingestion", "origin", files.Origin, "prior", res.Prior)

	gn.Info("(1/4) Importing aircraft models...")
	_, err = pipe(ctx,
		func(ctx context.Context, ch chan<- faa.AircraftModel) error {
			return in.readModels(ctx, files.Acftref, acftref, ch, res)
		},
		in.builder.LoadModels,
	)
	if err != nil {
		return nil, err
	}
	gn.Message("<em>Imported %s aircraft models</em>",
		humanize.Comma(int64(res.ModelsAccepted)))

	gn.Info("(2/4) Importing registrations...")
	res.Accepted, err = pipe(ctx,
		func(ctx context.Context, ch chan<- faa.Registration) error {
			return in.readRegistrations(ctx, files.Master, master, ch, res)
		},
		in.builder.LoadRegistrations,
	)
	if err != nil {
		return nil, err
	}
	gn.Message("<em>Imported %s registrations, skipped %s</em>",
		humanize.Comma(int64(res.Accepted)), humanize.Comma(int64(res.Skipped)))

	if err = in.check(res); err != nil {
		return nil, err
	}

	gn.Info("(3/4) Building indexes...")
	if err = in.builder.BuildIndexes(ctx); err != nil {
		return nil, err
	}

	gn.Info("(4/4) Publishing snapshot...")
	res.SnapshotID = uuid.NewString()
	res.Elapsed = time.Since(start)
	if err = in.builder.SetMetadata(ctx, metadata(res)); err != nil {
		return nil, err
	}
	if err = in.builder.Publish(ctx); err != nil {
		return nil, err
	}

	slog.Info("Snapshot published",
		"snapshot_id", res.SnapshotID,
		"accepted", res.Accepted,
		"skipped", res.Skipped,
		"reasons", res.Reasons,
		"models", res.ModelsAccepted,
		"duration", gnfmt.TimeString(res.Elapsed.Seconds()),
	)
	gn.Info(`Snapshot published
Registrations: %s, skipped %s, aircraft models: %s.
		Elapsed time: <em>%s</em>
`,
		humanize.Comma(int64(res.Accepted)),
		humanize.Comma(int64(res.Skipped)),
		humanize.Comma(int64(res.ModelsAccepted)),
		gnfmt.TimeString(res.Elapsed.Seconds()),
	)
	return res, nil
}

// check rejects empty snapshots and snapshots that shrank below
// MinRatio of the published one.
func (in *Ingester) check(r *Report) error {
	if r.Accepted == 0 {
		return EmptySnapshotError(r.Origin)
	}
	if r.Prior == 0 || in.cfg.MinRatio == 0 {
		return nil
	}
	if float64(r.Accepted) >= float64(r.Prior)*in.cfg.MinRatio {
		return nil
	}
	if in.cfg.Force {
		slog.Warn("Publishing a snapshot smaller than allowed",
			"accepted", r.Accepted, "prior", r.Prior)
		gn.Warn("Snapshot is much smaller than the current one, publishing anyway")
		return nil
	}
	return TruncatedSnapshotError(r.Accepted, r.Prior, in.cfg.MinRatio)
}

func metadata(r *Report) map[string]string {
	return map[string]string{
		store.MetaLastUpdated:           time.Now().UTC().Format(time.RFC3339),
		store.MetaSnapshotID:            r.SnapshotID,
		store.MetaSource:                r.Origin,
		store.MetaRegistrationsAccepted: strconv.Itoa(r.Accepted),
		store.MetaRegistrationsSkipped:  strconv.Itoa(r.Skipped),
		store.MetaModelsAccepted:        strconv.Itoa(r.ModelsAccepted),
		store.MetaBuildDuration:         r.Elapsed.Round(time.Millisecond).String(),
	}
}

func (in *Ingester) readModels(
	ctx context.Context,
	r io.Reader,
	schema *fixedwidth.Schema,
	ch chan<- faa.AircraftModel,
	rep *Report,
) error {
	seen := make(map[string]struct{})
	err := scan(r, schema.HasHeader, func(line string) error {
		m := faa.NewAircraftModel(schema.Parse(line))
		if m.Code == "" {
			rep.ModelsSkipped++
			rep.tally(SkipEmptyCode)
			return nil
		}
		if _, ok := seen[m.Code]; ok {
			rep.ModelsOverwritten++
			rep.tally(DuplicateCodeOverwritten)
		}
		seen[m.Code] = struct{}{}
		return send(ctx, ch, m)
	}, func(reason string) {
		rep.ModelsSkipped++
		rep.tally(reason)
	})
	if err != nil {
		return ReadError(schema.Name, err)
	}
	rep.ModelsAccepted = len(seen)
	return nil
}

func (in *Ingester) readRegistrations(
	ctx context.Context,
	r io.Reader,
	schema *fixedwidth.Schema,
	ch chan<- faa.Registration,
	rep *Report,
) error {
	var count int
	seen := make(map[string]struct{})
	err := scan(r, schema.HasHeader, func(line string) error {
		count++
		if in.cfg.BatchSize > 0 && count%in.cfg.BatchSize == 0 {
			progressReport(count, "registrations")
		}

		reg := faa.NewRegistration(schema.Parse(line))
		if reg.NNumber == "" {
			rep.Skipped++
			rep.tally(SkipEmptyTail)
			return nil
		}
		if _, ok := seen[reg.NNumber]; ok {
			rep.Skipped++
			rep.tally(SkipDuplicateTail)
			return nil
		}
		seen[reg.NNumber] = struct{}{}
		return send(ctx, ch, reg)
	}, func(reason string) {
		rep.Skipped++
		rep.tally(reason)
	})
	if in.cfg.BatchSize > 0 && count >= in.cfg.BatchSize {
		fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", 60))
	}
	if err != nil {
		return ReadError(schema.Name, err)
	}
	return nil
}

// pipe runs a parser and a loader concurrently, connected by a channel.
// The loader sees the end of the stream when the parser is done; if the
// parser fails, its error is returned and the loaded rows are discarded
// together with the unpublished snapshot.
func pipe[T any](
	ctx context.Context,
	produce func(context.Context, chan<- T) error,
	consume func(context.Context, iter.Seq[T]) (int, error),
) (int, error) {
	ch := make(chan T, chanSize)
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(ch)
		return produce(gCtx, ch)
	})

	var res int
	g.Go(func() error {
		// drain whatever the loader left so the parser never blocks
		defer func() {
			for range ch {
			}
		}()
		var err error
		res, err = consume(gCtx, func(yield func(T) bool) {
			for v := range ch {
				if !yield(v) {
					return
				}
			}
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return res, nil
}

func send[T any](ctx context.Context, ch chan<- T, v T) error {
	select {
	case ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scan calls fn for every data line. A byte order mark and the header row
// are dropped. Blank lines and lines longer than maxLineSize are reported
// to skip and the scan goes on.
func scan(
	r io.Reader,
	hasHeader bool,
	fn func(line string) error,
	skip func(reason string),
) error {
	br := bufio.NewReaderSize(r, 64*1024)

	first := true
	for {
		line, tooLong, err := readLine(br)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if first {
			first = false
			line = strings.TrimPrefix(line, bom)
			if hasHeader {
				continue
			}
		}
		switch {
		case tooLong:
			skip(SkipLineTooLong)
		case strings.TrimSpace(line) == "":
			skip(SkipBlankLine)
		default:
			if err = fn(line); err != nil {
				return err
			}
		}
	}
}

// readLine returns the next line without its line ending. Once a line
// grows past maxLineSize the rest of it is read and discarded, and the
// second result is true. io.EOF is returned only when no bytes are left.
func readLine(br *bufio.Reader) (string, bool, error) {
	var buf []byte
	var started, tooLong bool
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if err == io.EOF && started {
				break
			}
			return "", false, err
		}
		started = true
		if !tooLong {
			if len(buf)+len(chunk) > maxLineSize {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}
	return string(buf), tooLong, nil
}

// progressReport writes progress to stderr with humanized numbers.
func progressReport(count int, entity string) {
	str := fmt.Sprintf("Processed %s %s", humanize.Comma(int64(count)), entity)
	fmt.Fprintf(os.Stderr, "\r%s", strings.Repeat(" ", 60))
	fmt.Fprintf(os.Stderr, "\r%s", str)
}
