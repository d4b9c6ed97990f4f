package lookup

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/taillookup/taillookup/pkg/store"
)

// handle counts the queries that use a reader. A retired handle closes
// its reader when the last of them is done.
type handle struct {
	r       store.Reader
	refs    atomic.Int64
	retired atomic.Bool
	once    sync.Once
	err     error
}

// acquire pins the current handle. The caller must release it.
func (s *Service) acquire() *handle {
	for {
		h := s.reader.Load()
		h.refs.Add(1)
		if s.reader.Load() == h {
			return h
		}
		// swapped in between, h may be closing already
		h.release()
	}
}

func (h *handle) release() {
	if h.refs.Add(-1) == 0 && h.retired.Load() {
		if err := h.close(); err != nil {
			slog.Warn("Cannot close previous snapshot", "error", err)
		}
	}
}

// retire marks the handle as replaced. The reader is closed now if it is
// idle, otherwise by the last release. Only an immediate close reports
// its error.
func (h *handle) retire() error {
	h.retired.Store(true)
	if h.refs.Load() == 0 {
		return h.close()
	}
	return nil
}

func (h *handle) close() error {
	h.once.Do(func() {
		if h.r != nil {
			h.err = h.r.Close()
		}
	})
	return h.err
}
