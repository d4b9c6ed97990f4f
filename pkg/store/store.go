// Package store defines contracts for the registry snapshot.
//
// A Builder writes a complete snapshot and publishes it in one step.
// A Reader answers queries against a published snapshot and never
// modifies it. Implementations live in internal/iosqlite and internal/iopg.
package store

import (
	"context"
	"errors"
	"iter"

	"github.com/taillookup/taillookup/pkg/faa"
)

// ErrNotFound is returned by Reader.Lookup when no registration has the
// requested tail number.
var ErrNotFound = errors.New("registration not found")

// Metadata keys written with each snapshot.
const (
	MetaLastUpdated           = "last_updated"
	MetaSnapshotID            = "snapshot_id"
	MetaSource                = "source"
	MetaRegistrationsAccepted = "registrations_accepted"
	MetaRegistrationsSkipped  = "registrations_skipped"
	MetaModelsAccepted        = "models_accepted"
	MetaBuildDuration         = "build_duration"
)

// Row is a registration joined with its aircraft model. Model fields are
// nil when the registration references an unknown model code.
type Row struct {
	NNumber      string
	ModelCode    *string
	TypeAircraft *string
	TypeEngine   *string
	YearMfr      *int
	Manufacturer *string
	Model        *string
	Series       *string
	// EngineCount and SeatCount prefer the model values and fall back to
	// the registration values.
	EngineCount *int
	SeatCount   *int
}

// Reader queries a published snapshot. Implementations are safe for
// concurrent use.
type Reader interface {
	// Lookup finds a registration by normalized tail number.
	Lookup(ctx context.Context, nNumber string) (*Row, error)

	// LookupMany finds registrations for several normalized tail numbers in
	// one query. Misses are absent from the result.
	LookupMany(ctx context.Context, nNumbers []string) (map[string]*Row, error)

	// Count returns the number of registrations.
	Count(ctx context.Context) (int, error)

	// Metadata returns a metadata value and whether the key exists.
	Metadata(ctx context.Context, key string) (string, bool, error)

	// Ping checks that the snapshot is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Builder writes a new snapshot. The snapshot becomes visible to readers
// only after Publish. Abort discards everything written since Begin.
type Builder interface {
	// Begin prepares empty tables for a new snapshot.
	Begin(ctx context.Context) error

	// PriorCount returns the number of registrations in the currently
	// published snapshot, or 0 when there is none.
	PriorCount(ctx context.Context) (int, error)

	// LoadModels writes all aircraft models in one transaction.
	LoadModels(ctx context.Context, models iter.Seq[faa.AircraftModel]) (int, error)

	// LoadRegistrations writes all registrations in one transaction.
	LoadRegistrations(ctx context.Context, regs iter.Seq[faa.Registration]) (int, error)

	// BuildIndexes creates secondary indexes after the bulk load.
	BuildIndexes(ctx context.Context) error

	// SetMetadata replaces snapshot metadata.
	SetMetadata(ctx context.Context, meta map[string]string) error

	// Publish makes the snapshot visible to readers.
	Publish(ctx context.Context) error

	// Abort removes an unpublished snapshot. It is safe to call after
	// Publish, when it does nothing.
	Abort() error
}
