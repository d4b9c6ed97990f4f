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
	"fmt"
	"log/slog"
	"os"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/taillookup/taillookup/internal/ioconfig"
	"github.com/taillookup/taillookup/internal/iofs"
	"github.com/taillookup/taillookup/internal/iologger"
	app "github.com/taillookup/taillookup/pkg"
	"github.com/taillookup/taillookup/pkg/config"
)

var (
	homeDir string
	opts    []config.Option
	cfg     *config.Config
)

// getRootCmd assembles the command tree. A new tree is created on every
// call so tests can execute commands independently.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "taillookup",
		Short:   "Looks up aircraft by FAA registration tail numbers",
		Long: `taillookup builds a compact snapshot of the FAA releasable aircraft
registry and answers lookups by tail number from the command line or
over HTTP.

Commands:
  - build: download the registry and publish a new snapshot
  - serve: serve lookups over HTTP, reloading new snapshots
  - lookup: print aircraft for tail numbers
  - stats: describe the published snapshot

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (TAILLOOKUP_*)
  3. Config file (~/.config/taillookup/config.yaml)
  4. Built-in defaults

Nested fields use underscores (server.port → TAILLOOKUP_SERVER_PORT).`,
		PersistentPreRunE: bootstrap,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Remove the automatic "taillookup version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Flags().BoolP("version", "V", false, "version for taillookup")

	pf := rootCmd.PersistentFlags()
	pf.StringP("backend", "b", "", "snapshot backend: sqlite or postgres")
	pf.String("db", "", "location of the SQLite snapshot")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-dest", "", "log destination: file, stderr, stdout")

	rootCmd.AddCommand(
		getBuildCmd(),
		getServeCmd(),
		getLookupCmd(),
		getStatsCmd(),
	)
	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	var created bool
	if created, err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}
	if created {
		slog.Info("Default config created",
			"config_file", config.ConfigFilePath(homeDir))
	}

	var cfgViper *config.Config
	if cfgViper, err = ioconfig.Load(config.ConfigFilePath(homeDir)); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	cfg = config.New()
	opts = cfgViper.ToOptions()
	for _, f := range []funcFlag{backendFlag, dbFlag, logLevelFlag, logDestFlag} {
		f(cmd)
	}
	cfg.Update(opts)

	// Set HomeDir after config is loaded
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})

	// Reconfigure logging with user's settings
	if err = iologger.Init(config.LogDir(cfg.HomeDir), cfg.Log); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir),
		"backend", cfg.Store.Backend,
	)
	return nil
}

// Execute runs the command line interface. This is called by main.main().
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
