// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ollama-chat/internal/models"
	"github.com/jeranaias/ollama-chat/internal/session"
)

// CompletionMsg carries the outcome of a completion back to the event loop.
type CompletionMsg struct {
	Request *session.Request
	Outcome session.Outcome
}

// ModelsLoadedMsg signals that the model directory fetch finished.
type ModelsLoadedMsg struct {
	Err error
}

// exchangeCmd runs the completion for req off the event loop.
func exchangeCmd(ctx context.Context, store *session.Store, req *session.Request) tea.Cmd {
	return func() tea.Msg {
		return CompletionMsg{Request: req, Outcome: store.Exchange(ctx, req)}
	}
}

// loadModelsCmd fetches the model directory into the store.
func loadModelsCmd(ctx context.Context, store *session.Store, dir *models.Directory) tea.Cmd {
	if dir == nil {
		return nil
	}
	return func() tea.Msg {
		return ModelsLoadedMsg{Err: store.LoadModels(ctx, dir)}
	}
}
