/*
Copyright © 2025 The taillookup Authors

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/taillookup/taillookup/internal/iohttp"
	"github.com/taillookup/taillookup/pkg/config"
	"github.com/taillookup/taillookup/pkg/lookup"
	"github.com/taillookup/taillookup/pkg/store"
	"golang.org/x/sync/errgroup"
)

// getServeCmd returns the serve command.
func getServeCmd() *cobra.Command {
	var (
		port    int
		batched bool
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve tail number lookups over HTTP",
		Long: `Start the HTTP lookup service.

Endpoints:
  GET  /api/v1/aircraft/{tail}   single lookup
  POST /api/v1/aircraft/bulk     up to 50 tail numbers
  GET  /api/v1/health            snapshot status
  GET  /api/v1/ready             readiness probe
  GET  /api/v1/stats             snapshot statistics
  GET  /metrics                  Prometheus metrics

The server starts even without a published snapshot. It picks up new
snapshots published by 'taillookup build' without a restart, and
rechecks immediately on SIGHUP.

Examples:
  taillookup serve
  taillookup serve --port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var serveOpts []config.Option
			if cmd.Flags().Changed("port") {
				serveOpts = append(serveOpts, config.OptServerPort(port))
			}
			if cmd.Flags().Changed("batched") {
				serveOpts = append(serveOpts, config.OptServerBatched(batched))
			}
			cfg.Update(serveOpts)

			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt, syscall.SIGTERM,
			)
			defer stop()

			err := runServe(ctx, cfg)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "port of the HTTP server")
	serveCmd.Flags().BoolVar(
		&batched, "batched", false,
		"answer bulk requests with a single query",
	)

	return serveCmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	svc := lookup.New(nil,
		lookup.OptBatched(cfg.Server.Batched),
		lookup.OptJobsNumber(cfg.JobsNumber),
		lookup.OptBulkLimit(cfg.Server.BulkLimit),
	)
	defer svc.Close()

	srv := iohttp.New(cfg, svc)
	interval := time.Duration(cfg.Server.ReloadIntervalSec) * time.Second
	open := func(ctx context.Context) (store.Reader, error) {
		return openReader(ctx, cfg)
	}
	w := iohttp.NewWatcher(svc, snapshotFile(cfg), open, interval, srv.Registry())

	if err := w.Load(ctx); err != nil {
		slog.Warn("Starting without a snapshot", "error", err)
		gn.Warn("No snapshot at <em>%s</em>, lookups are unavailable until " +
			"'taillookup build' publishes one", snapshotName(cfg))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx)
	})
	g.Go(func() error {
		err := w.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
