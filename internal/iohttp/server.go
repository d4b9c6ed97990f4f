// Package iohttp serves tail number lookups over HTTP.
package iohttp

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gnames/gn"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/taillookup/taillookup/pkg/config"
	"github.com/taillookup/taillookup/pkg/lookup"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
	maxBodySize     = 1 << 20
)

// Server exposes a lookup.Service as a JSON API.
type Server struct {
	port     int
	svc      *lookup.Service
	registry *prometheus.Registry
	metrics  *metrics
	handler  http.Handler
}

// New creates a Server for the lookup service.
func New(cfg *config.Config, svc *lookup.Service) *Server {
	res := &Server{
		port:     cfg.Server.Port,
		svc:      svc,
		registry: newRegistry(),
	}
	res.metrics = newMetrics(res.registry)
	res.handler = res.router()
	return res
}

// Registry accepts additional collectors exported on /metrics.
func (s *Server) Registry() prometheus.Registerer {
	return s.registry
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Timeout(requestTimeout))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/aircraft/{tail}", s.handleAircraft)
		r.Post("/aircraft/bulk", s.handleBulk)
		r.Get("/health", s.handleHealth)
		r.Get("/ready", s.handleReady)
		r.Get("/stats", s.handleStats)
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(r)
}

// accessLog logs every request and records request metrics.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		s.metrics.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.metrics.duration.WithLabelValues(route).Observe(elapsed.Seconds())

		slog.Info("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"remote", r.RemoteAddr,
		)
	})
}

// Run serves requests until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := ":" + strconv.Itoa(s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return StartError(addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	slog.Info("HTTP server started", "addr", addr)
	gn.Info("Serving lookups at <em>http://localhost%s/api/v1</em>", addr)

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return StartError(addr, err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down HTTP server")
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutCtx)
}
