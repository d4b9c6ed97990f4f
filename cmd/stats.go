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
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/taillookup/taillookup/pkg/config"
	"github.com/taillookup/taillookup/pkg/lookup"
	"github.com/taillookup/taillookup/pkg/store"
)

// getStatsCmd returns the stats command.
func getStatsCmd() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Describe the published snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runStats(cmd.Context(), cmd.OutOrStdout(), cfg)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	return statsCmd
}

func runStats(ctx context.Context, w io.Writer, cfg *config.Config) error {
	r, err := openReader(ctx, cfg)
	if err != nil {
		return err
	}
	svc := lookup.New(r)
	defer svc.Close()

	st, err := svc.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Snapshot:       %s\n", snapshotName(cfg))
	fmt.Fprintf(w, "Registrations:  %s\n", humanize.Comma(int64(st.RecordCount)))
	fmt.Fprintf(w, "Last updated:   %s\n", orUnknown(st.LastUpdated))

	rows := []struct{ label, key string }{
		{"Snapshot ID:    ", store.MetaSnapshotID},
		{"Source:         ", store.MetaSource},
		{"Skipped:        ", store.MetaRegistrationsSkipped},
		{"Aircraft models:", store.MetaModelsAccepted},
		{"Build time:     ", store.MetaBuildDuration},
	}
	for _, row := range rows {
		v, ok, err := r.Metadata(ctx, row.key)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(w, "%s %s\n", row.label, v)
		}
	}
	return nil
}
