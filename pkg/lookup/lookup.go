// Package lookup answers tail number queries against a published
// snapshot. The snapshot reader is injected and can be replaced while
// the service is running.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/taillookup/taillookup/pkg/faa"
	"github.com/taillookup/taillookup/pkg/store"
	"github.com/taillookup/taillookup/pkg/tailnum"
	"golang.org/x/sync/errgroup"
)

// MaxBulk is the default limit of tail numbers in one bulk request.
const MaxBulk = 50

// Health statuses.
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Messages of failed bulk items.
const (
	MsgNotFound    = "Not found"
	MsgInvalidTail = "Invalid tail number"
)

var (
	// ErrNotFound means no registration has the tail number.
	ErrNotFound = errors.New("aircraft not found")

	// ErrInvalidTail means the tail number is empty after normalization.
	ErrInvalidTail = errors.New("invalid tail number")

	// ErrTooMany means a bulk request exceeds the limit.
	ErrTooMany = errors.New("too many tail numbers")

	// ErrUnavailable means there is no snapshot to query.
	ErrUnavailable = errors.New("snapshot is not available")
)

// Aircraft is a registration with its model description.
type Aircraft struct {
	// TailNumber is the display form with the "N" prefix.
	TailNumber string `json:"tail_number"`
	// NNumber is the normalized key the registration is stored under.
	NNumber      string  `json:"n_number,omitempty"`
	Manufacturer *string `json:"manufacturer,omitempty"`
	Model        *string `json:"model,omitempty"`
	Series       *string `json:"series,omitempty"`
	AircraftType string  `json:"aircraft_type,omitempty"`
	EngineType   string  `json:"engine_type,omitempty"`
	NumEngines   *int    `json:"num_engines,omitempty"`
	NumSeats     *int    `json:"num_seats,omitempty"`
	YearMfr      *int    `json:"year_mfr,omitempty"`
}

// BulkItem is the outcome for one tail number of a bulk request. Failed
// items carry only the tail number and the Error message.
type BulkItem struct {
	Aircraft
	Error string `json:"error,omitempty"`
}

// BulkResult keeps items in the order of the request.
type BulkResult struct {
	Total   int        `json:"total"`
	Found   int        `json:"found"`
	Results []BulkItem `json:"results"`
}

// Health describes the availability of the snapshot.
type Health struct {
	Status         string  `json:"status"`
	DatabaseExists bool    `json:"database_exists"`
	RecordCount    int     `json:"record_count"`
	LastUpdated    *string `json:"last_updated"`
}

// Healthy is true when the snapshot is reachable and has registrations.
func (h Health) Healthy() bool {
	return h.Status == StatusHealthy
}

// Stats describes the published snapshot.
type Stats struct {
	RecordCount int     `json:"record_count"`
	LastUpdated *string `json:"last_updated"`
}

// Service answers lookups. It is safe for concurrent use.
type Service struct {
	reader    atomic.Pointer[handle]
	batched   bool
	jobs      int
	bulkLimit int
}

// Option configures a Service.
type Option func(*Service)

// OptBatched makes Bulk query all tail numbers at once.
func OptBatched(b bool) Option {
	return func(s *Service) {
		s.batched = b
	}
}

// OptJobsNumber limits concurrent queries of one bulk request.
func OptJobsNumber(i int) Option {
	return func(s *Service) {
		if i > 0 {
			s.jobs = i
		}
	}
}

// OptBulkLimit sets the largest accepted bulk request.
func OptBulkLimit(i int) Option {
	return func(s *Service) {
		if i > 0 {
			s.bulkLimit = i
		}
	}
}

// New creates a Service. The reader may be nil when no snapshot is
// available yet; lookups then fail with ErrUnavailable.
func New(r store.Reader, opts ...Option) *Service {
	res := &Service{jobs: 4, bulkLimit: MaxBulk}
	for _, opt := range opts {
		opt(res)
	}
	res.reader.Store(&handle{r: r})
	return res
}

// BulkLimit returns the largest accepted bulk request.
func (s *Service) BulkLimit() int {
	return s.bulkLimit
}

// Ready reports whether a snapshot reader is installed.
func (s *Service) Ready() bool {
	return s.reader.Load().r != nil
}

// Swap installs a new reader. New queries go to r, and the previous
// reader is closed once the queries already using it are done. The
// returned error comes from closing an idle previous reader.
func (s *Service) Swap(r store.Reader) error {
	return s.reader.Swap(&handle{r: r}).retire()
}

// Close retires the current reader. Queries in flight finish first.
func (s *Service) Close() error {
	return s.Swap(nil)
}

// Lookup finds an aircraft by any accepted spelling of its tail number.
func (s *Service) Lookup(ctx context.Context, id string) (*Aircraft, error) {
	key := tailnum.Normalize(id)
	if key == "" {
		return nil, ErrInvalidTail
	}

	h := s.acquire()
	defer h.release()
	r := h.r
	if r == nil {
		return nil, ErrUnavailable
	}

	row, err := r.Lookup(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, tailnum.Display(key))
	}
	if err != nil {
		return nil, err
	}
	return newAircraft(row), nil
}

// Bulk looks up several tail numbers. Misses and invalid tail numbers
// are reported per item and do not fail the request.
func (s *Service) Bulk(ctx context.Context, ids []string) (*BulkResult, error) {
	if len(ids) > s.bulkLimit {
		return nil, fmt.Errorf("%w: %d, the limit is %d",
			ErrTooMany, len(ids), s.bulkLimit)
	}

	res := &BulkResult{Total: len(ids), Results: make([]BulkItem, len(ids))}
	if len(ids) == 0 {
		return res, nil
	}

	h := s.acquire()
	defer h.release()
	r := h.r
	if r == nil {
		return nil, ErrUnavailable
	}

	var err error
	if s.batched {
		err = s.bulkBatched(ctx, r, ids, res.Results)
	} else {
		err = s.bulkParallel(ctx, r, ids, res.Results)
	}
	if err != nil {
		return nil, err
	}

	for i := range res.Results {
		if res.Results[i].Error == "" {
			res.Found++
		}
	}
	return res, nil
}

func (s *Service) bulkParallel(
	ctx context.Context,
	r store.Reader,
	ids []string,
	items []BulkItem,
) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.jobs)

	for i, id := range ids {
		key := tailnum.Normalize(id)
		if key == "" {
			items[i] = invalidItem(id)
			continue
		}
		g.Go(func() error {
			row, err := r.Lookup(gCtx, key)
			if errors.Is(err, store.ErrNotFound) {
				items[i] = notFoundItem(key)
				return nil
			}
			if err != nil {
				return err
			}
			items[i] = BulkItem{Aircraft: *newAircraft(row)}
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) bulkBatched(
	ctx context.Context,
	r store.Reader,
	ids []string,
	items []BulkItem,
) error {
	keys := make([]string, len(ids))
	query := make([]string, 0, len(ids))
	for i, id := range ids {
		keys[i] = tailnum.Normalize(id)
		if keys[i] != "" {
			query = append(query, keys[i])
		}
	}

	rows, err := r.LookupMany(ctx, query)
	if err != nil {
		return err
	}

	for i, key := range keys {
		switch row, ok := rows[key]; {
		case key == "":
			items[i] = invalidItem(ids[i])
		case !ok:
			items[i] = notFoundItem(key)
		default:
			items[i] = BulkItem{Aircraft: *newAircraft(row)}
		}
	}
	return nil
}

// Health reports whether the snapshot can serve lookups. It never fails;
// problems are reflected in the returned status.
func (s *Service) Health(ctx context.Context) Health {
	res := Health{Status: StatusUnhealthy}
	h := s.acquire()
	defer h.release()
	r := h.r
	if r == nil || r.Ping(ctx) != nil {
		return res
	}
	res.DatabaseExists = true

	count, err := r.Count(ctx)
	if err != nil {
		return res
	}
	res.RecordCount = count
	res.LastUpdated = lastUpdated(ctx, r)

	if count > 0 {
		res.Status = StatusHealthy
	}
	return res
}

// Stats returns the size and the refresh time of the snapshot.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	h := s.acquire()
	defer h.release()
	r := h.r
	if r == nil {
		return nil, ErrUnavailable
	}
	count, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{RecordCount: count, LastUpdated: lastUpdated(ctx, r)}, nil
}

func lastUpdated(ctx context.Context, r store.Reader) *string {
	val, ok, err := r.Metadata(ctx, store.MetaLastUpdated)
	if err != nil || !ok {
		return nil
	}
	return &val
}

func newAircraft(row *store.Row) *Aircraft {
	return &Aircraft{
		TailNumber:   tailnum.Display(row.NNumber),
		NNumber:      row.NNumber,
		Manufacturer: row.Manufacturer,
		Model:        row.Model,
		Series:       row.Series,
		AircraftType: faa.AircraftTypeLabel(deref(row.TypeAircraft)),
		EngineType:   faa.EngineTypeLabel(deref(row.TypeEngine)),
		NumEngines:   row.EngineCount,
		NumSeats:     row.SeatCount,
		YearMfr:      row.YearMfr,
	}
}

func invalidItem(id string) BulkItem {
	return BulkItem{
		Aircraft: Aircraft{TailNumber: strings.ToUpper(strings.TrimSpace(id))},
		Error:    MsgInvalidTail,
	}
}

func notFoundItem(key string) BulkItem {
	return BulkItem{
		Aircraft: Aircraft{TailNumber: tailnum.Display(key)},
		Error:    MsgNotFound,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
