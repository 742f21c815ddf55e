// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jeranaias/ollama-chat/internal/export"
	"github.com/jeranaias/ollama-chat/internal/model"
)

func (app *App) addExportCommand(rootCmd *cobra.Command) {
	var (
		format string
		output string
	)
	exportCmd := &cobra.Command{
		Use:   "export N",
		Short: "Export chat N (as numbered by 'chats') to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(logToStderr)
			if err != nil {
				return err
			}
			defer s.close()

			chats := s.store.State().Chats
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 || n > len(chats) {
				return fmt.Errorf("no chat %s (have %d)", args[0], len(chats))
			}

			path, err := exportChat(chats[n-1], format, output)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&format, "format", "f", export.FormatMarkdown, "Output format: markdown or json")
	exportCmd.Flags().StringVarP(&output, "output", "o", ".", "Output directory")
	rootCmd.AddCommand(exportCmd)
}

// exportChat writes chat to dir in the named format and returns the path.
func exportChat(chat model.Chat, format, dir string) (string, error) {
	opts := export.DefaultOptions()
	opts.OutputDir = dir
	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return "", err
	}
	return export.ExportToFile(chat, exporter, opts)
}
