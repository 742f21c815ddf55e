// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat interface.
//
// The Model renders a session.Store: a conversation sidebar on the left and
// the active conversation, an input line and a status bar on the right.
// Completions run in tea.Cmds; their results come back as CompletionMsg and
// are reconciled with session.Store.FinishSend on the event loop.
//
// # Key Bindings
//
//   - Enter: send the message (input) / open the highlighted entry (sidebar)
//   - Esc: move focus between input and sidebar
//   - Up/Down: move in the sidebar, scroll the conversation otherwise
//   - Tab: cycle through the available models
//   - Ctrl+N: new chat
//   - Ctrl+X: delete the active chat
//   - Ctrl+C / Ctrl+Q: quit
package chat
