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
	"os"
	"os/signal"
	"syscall"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/taillookup/taillookup/internal/ioingest"
	"github.com/taillookup/taillookup/internal/iosource"
	"github.com/taillookup/taillookup/pkg/config"
)

// getBuildCmd returns the build command.
func getBuildCmd() *cobra.Command {
	var (
		path  string
		url   string
		force bool
	)

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build and publish a snapshot of the FAA registry",
		Long: `Build a lookup snapshot from the FAA releasable aircraft registry.

This command:
  1. Downloads ReleasableAircraft.zip (or opens a local archive/directory)
  2. Parses MASTER and ACFTREF fixed-width records
  3. Loads them into a new snapshot of the configured backend
  4. Publishes the snapshot in one step

A failed build leaves the published snapshot untouched. A snapshot much
smaller than the published one is rejected unless --force is given.

Examples:
  # Download the registry and build the SQLite snapshot
  taillookup build

  # Use an already downloaded archive
  taillookup build --path ~/Downloads/ReleasableAircraft.zip

  # Build the PostgreSQL mirror
  taillookup build --backend postgres`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var buildOpts []config.Option
			if cmd.Flags().Changed("path") {
				buildOpts = append(buildOpts, config.OptSourcePath(path))
			}
			if cmd.Flags().Changed("url") {
				buildOpts = append(buildOpts, config.OptSourceURL(url))
			}
			if cmd.Flags().Changed("force") {
				buildOpts = append(buildOpts, config.OptIngestForce(force))
			}
			cfg.Update(buildOpts)

			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt, syscall.SIGTERM,
			)
			defer stop()

			err := runBuild(ctx, cfg)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	buildCmd.Flags().StringVarP(
		&path, "path", "p", "",
		"local registry archive or directory (skips download)",
	)
	buildCmd.Flags().StringVarP(
		&url, "url", "u", "",
		"URL of the registry archive",
	)
	buildCmd.Flags().BoolVarP(
		&force, "force", "f", false,
		"publish even if the snapshot shrank a lot",
	)

	return buildCmd
}

func runBuild(ctx context.Context, cfg *config.Config) error {
	files, err := iosource.New(cfg).Open(ctx)
	if err != nil {
		return err
	}
	defer files.Close()

	b, release, err := newBuilder(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()

	gn.Info("Building snapshot at <em>%s</em>", snapshotName(cfg))
	_, err = ioingest.New(cfg, b).Run(ctx, files)
	return err
}
