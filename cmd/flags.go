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
	"github.com/spf13/cobra"
	"github.com/taillookup/taillookup/pkg/config"
)

// funcFlag adds an option to opts when its flag is set.
type funcFlag func(cmd *cobra.Command)

func backendFlag(cmd *cobra.Command) {
	if cmd.Flags().Changed("backend") {
		s, _ := cmd.Flags().GetString("backend")
		opts = append(opts, config.OptStoreBackend(s))
	}
}

func dbFlag(cmd *cobra.Command) {
	if cmd.Flags().Changed("db") {
		s, _ := cmd.Flags().GetString("db")
		opts = append(opts, config.OptStorePath(s))
	}
}

func logLevelFlag(cmd *cobra.Command) {
	if cmd.Flags().Changed("log-level") {
		s, _ := cmd.Flags().GetString("log-level")
		opts = append(opts, config.OptLogLevel(s))
	}
}

func logDestFlag(cmd *cobra.Command) {
	if cmd.Flags().Changed("log-dest") {
		s, _ := cmd.Flags().GetString("log-dest")
		opts = append(opts, config.OptLogDestination(s))
	}
}
