// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func (app *App) addVersionCommand(rootCmd *cobra.Command) {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ollama-chat %s\n", Version)
			if detailed, _ := cmd.Flags().GetBool("detailed"); detailed {
				fmt.Fprintf(out, "  commit:  %s\n", GitCommit)
				fmt.Fprintf(out, "  built:   %s\n", BuildDate)
				fmt.Fprintf(out, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
			}
		},
	}
	versionCmd.Flags().Bool("detailed", false, "Show build details")
	rootCmd.AddCommand(versionCmd)
}
