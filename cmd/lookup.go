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
	"fmt"
	"io"
	"strconv"

	"github.com/gnames/gn"
	"github.com/spf13/cobra"
	"github.com/taillookup/taillookup/pkg/config"
	"github.com/taillookup/taillookup/pkg/lookup"
)

const unknown = "Unknown"

// getLookupCmd returns the lookup command.
func getLookupCmd() *cobra.Command {
	lookupCmd := &cobra.Command{
		Use:   "lookup TAIL [TAIL...]",
		Short: "Print aircraft registered under tail numbers",
		Long: `Look up tail numbers in the published snapshot.

Tail numbers are case-insensitive; the "N" prefix, dashes and spaces
are optional.

Examples:
  taillookup lookup N172SP
  taillookup lookup n-172sp 12345`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runLookup(cmd.Context(), cmd.OutOrStdout(), cfg, args)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}
	return lookupCmd
}

func runLookup(
	ctx context.Context,
	w io.Writer,
	cfg *config.Config,
	tails []string,
) error {
	r, err := openReader(ctx, cfg)
	if err != nil {
		return err
	}
	svc := lookup.New(r)
	defer svc.Close()

	for _, tail := range tails {
		res, err := svc.Lookup(ctx, tail)
		switch {
		case err == nil:
			printAircraft(w, res)
		case errors.Is(err, lookup.ErrNotFound):
			fmt.Fprintf(w, "%s: not found\n\n", tail)
		case errors.Is(err, lookup.ErrInvalidTail):
			fmt.Fprintf(w, "%s: invalid tail number\n\n", tail)
		default:
			return err
		}
	}
	return nil
}

func printAircraft(w io.Writer, a *lookup.Aircraft) {
	fmt.Fprintln(w, a.TailNumber)
	fmt.Fprintf(w, "  Manufacturer:   %s\n", orUnknown(a.Manufacturer))
	fmt.Fprintf(w, "  Model:          %s\n", orUnknown(a.Model))
	fmt.Fprintf(w, "  Aircraft type:  %s\n", a.AircraftType)
	fmt.Fprintf(w, "  Engine type:    %s\n", a.EngineType)
	fmt.Fprintf(w, "  Engines:        %s\n", intOrUnknown(a.NumEngines))
	fmt.Fprintf(w, "  Seats:          %s\n", intOrUnknown(a.NumSeats))
	fmt.Fprintf(w, "  Year:           %s\n\n", intOrUnknown(a.YearMfr))
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return unknown
	}
	return *s
}

func intOrUnknown(i *int) string {
	if i == nil {
		return unknown
	}
	return strconv.Itoa(*i)
}
