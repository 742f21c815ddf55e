// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jeranaias/ollama-chat/internal/model"
	"github.com/jeranaias/ollama-chat/internal/util"
)

func (app *App) addModelsCommand(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "models",
		Short: "List the models the server offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.open(logToStderr)
			if err != nil {
				return err
			}
			defer s.close()

			names, err := s.dir.Fetch(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch models from %s: %w", s.cfg.BaseURL, err)
			}
			out := cmd.OutOrStdout()
			if len(names) == 0 {
				fmt.Fprintln(out, "No models installed. Pull one with: ollama pull llama2")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	})
}

func (app *App) addChatsCommand(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "chats",
		Short: "List saved chats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.open(logToStderr)
			if err != nil {
				return err
			}
			defer s.close()

			writeChatList(cmd.OutOrStdout(), s.store.State().Chats, "")
			return nil
		},
	})
}

// chatTitleWidth is the column width of titles in chat listings.
const chatTitleWidth = 36

// writeChatList prints one numbered line per chat, most recent first. The
// chat with activeID is marked.
func writeChatList(out io.Writer, chats []model.Chat, activeID string) {
	if len(chats) == 0 {
		fmt.Fprintln(out, "No saved chats.")
		return
	}
	numWidth := len(strconv.Itoa(len(chats)))
	for i, c := range chats {
		marker := " "
		if c.ID == activeID {
			marker = "*"
		}
		fmt.Fprintf(out, "%s %*d  %s  %s  %d messages\n",
			marker,
			numWidth, i+1,
			util.PadRight(util.SingleLine(c.Title), chatTitleWidth),
			c.CreatedAt.Local().Format("2006-01-02 15:04"),
			c.MessageCount(),
		)
	}
}
