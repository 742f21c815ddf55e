// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/ollama-chat/internal/ui/chat"
	"github.com/jeranaias/ollama-chat/internal/ui/styles"
)

func (app *App) addTUICommand(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen chat interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runTUI(cmd)
		},
	})
}

func (app *App) runTUI(cmd *cobra.Command) error {
	s, err := app.open(logToFile)
	if err != nil {
		return err
	}
	defer s.close()

	m := chat.New(s.store, s.dir, styles.NewTheme(), chat.Options{
		Context:  cmd.Context(),
		WordWrap: s.cfg.UI.WordWrap,
		Logger:   s.logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	s.logger.Info("tui started", "chats", len(s.store.State().Chats))
	_, err = p.Run()
	return err
}
