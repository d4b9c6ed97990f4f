package iohttp

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/taillookup/taillookup/pkg/lookup"
	"github.com/taillookup/taillookup/pkg/store"
)

// Opener opens the currently published snapshot.
type Opener func(ctx context.Context) (store.Reader, error)

// Watcher installs newly published snapshots into a lookup.Service.
// A snapshot file is watched for replacement; server backends without a
// file are only opened while the service has no reader.
type Watcher struct {
	svc      *lookup.Service
	path     string
	open     Opener
	interval time.Duration
	metrics  *snapshotMetrics
	current  os.FileInfo
}

// NewWatcher creates a Watcher. The path is empty for backends that
// publish without replacing a file.
func NewWatcher(
	svc *lookup.Service,
	path string,
	open Opener,
	interval time.Duration,
	r prometheus.Registerer,
) *Watcher {
	if path != "" {
		path = filepath.Clean(path)
	}
	return &Watcher{
		svc:      svc,
		path:     path,
		open:     open,
		interval: interval,
		metrics:  newSnapshotMetrics(r),
	}
}

// Load opens the snapshot and swaps it into the service. The previous
// reader is closed after queries running on it finish.
func (w *Watcher) Load(ctx context.Context) error {
	var info os.FileInfo
	if w.path != "" {
		var err error
		if info, err = os.Stat(w.path); err != nil {
			w.metrics.lastLoadSuccess.Set(0)
			return ReloadError(w.path, err)
		}
	}

	r, err := w.open(ctx)
	if err != nil {
		w.metrics.lastLoadSuccess.Set(0)
		return ReloadError(w.path, err)
	}

	count, err := r.Count(ctx)
	if err != nil {
		r.Close()
		w.metrics.lastLoadSuccess.Set(0)
		return ReloadError(w.path, err)
	}
	id, _, _ := r.Metadata(ctx, store.MetaSnapshotID)

	if err = w.svc.Swap(r); err != nil {
		slog.Warn("Cannot close previous snapshot", "error", err)
	}
	w.current = info
	w.metrics.reloads.Inc()
	w.metrics.lastLoadSuccess.Set(1)
	w.metrics.registrations.Set(float64(count))

	slog.Info("Snapshot loaded",
		"path", w.path, "snapshot_id", id, "registrations", count)
	return nil
}

// Run checks for a new snapshot on file system events, every interval
// and on SIGHUP until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)

	var events <-chan fsnotify.Event
	var errs <-chan error
	if w.path != "" {
		fw, err := fsnotify.NewWatcher()
		if err == nil {
			err = fw.Add(filepath.Dir(w.path))
		}
		if err != nil {
			slog.Warn("File notifications are unavailable, polling instead",
				"path", w.path, "interval", w.interval, "error", err)
		} else {
			defer fw.Close()
			events, errs = fw.Events, fw.Errors
		}
	}

	for {
		select {
		case ev := <-events:
			if filepath.Clean(ev.Name) == w.path &&
				ev.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename) {
				w.check(ctx)
			}
		case err := <-errs:
			slog.Warn("File notification error", "error", err)
		case <-ticker.C:
			w.check(ctx)
		case <-sighup:
			w.check(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Watcher) check(ctx context.Context) {
	if !w.changed() {
		return
	}
	if err := w.Load(ctx); err != nil {
		slog.Warn("Snapshot reload failed, serving the current one", "error", err)
	}
}

// changed reports whether a snapshot different from the served one has
// been published.
func (w *Watcher) changed() bool {
	if !w.svc.Ready() {
		return true
	}
	if w.path == "" {
		return false
	}
	info, err := os.Stat(w.path)
	if err != nil {
		return false
	}
	if w.current == nil {
		return true
	}
	return !os.SameFile(w.current, info) ||
		!info.ModTime().Equal(w.current.ModTime()) ||
		info.Size() != w.current.Size()
}
