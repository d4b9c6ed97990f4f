package iohttp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taillookup/taillookup/pkg/lookup"
	"github.com/taillookup/taillookup/pkg/tailnum"
)

// BulkRequest is the body of a bulk lookup.
type BulkRequest struct {
	TailNumbers *[]string `json:"tail_numbers"`
}

func (s *Server) handleAircraft(w http.ResponseWriter, r *http.Request) {
	tail := chi.URLParam(r, "tail")
	res, err := s.svc.Lookup(r.Context(), tail)
	switch {
	case err == nil:
		s.metrics.lookups.WithLabelValues("found").Inc()
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, lookup.ErrInvalidTail):
		s.metrics.lookups.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, lookup.MsgInvalidTail)
	case errors.Is(err, lookup.ErrNotFound):
		s.metrics.lookups.WithLabelValues("not_found").Inc()
		display := tailnum.Display(tailnum.Normalize(tail))
		writeError(w, http.StatusNotFound, "Aircraft "+display+" not found")
	default:
		s.unavailable(w, err)
	}
}

func (s *Server) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Malformed request body: "+err.Error())
		return
	}
	if req.TailNumbers == nil {
		writeError(w, http.StatusUnprocessableEntity, "Field tail_numbers is required")
		return
	}

	ids := *req.TailNumbers
	res, err := s.svc.Bulk(r.Context(), ids)
	switch {
	case err == nil:
		s.metrics.bulkSize.Observe(float64(len(ids)))
		for _, item := range res.Results {
			s.metrics.lookups.WithLabelValues(outcome(item.Error)).Inc()
		}
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, lookup.ErrTooMany):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.unavailable(w, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Health(r.Context()))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	h := s.svc.Health(r.Context())
	status := http.StatusOK
	if !h.Healthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, h)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Stats(r.Context())
	if err != nil {
		s.unavailable(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) unavailable(w http.ResponseWriter, err error) {
	s.metrics.lookups.WithLabelValues("error").Inc()
	slog.Error("Snapshot query failed", "error", err)
	writeError(w, http.StatusServiceUnavailable, "Aircraft database is unavailable")
}

func outcome(msg string) string {
	switch msg {
	case "":
		return "found"
	case lookup.MsgNotFound:
		return "not_found"
	default:
		return "invalid"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}
