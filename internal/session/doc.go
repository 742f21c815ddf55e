// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the in-memory chat state and is its only mutator.
//
// A Store holds the chat list (most recent first), the active chat and its
// messages, the selected model, and the last error. Every change to the chat
// list is written through to a ChatRepository immediately.
//
// # Sending
//
// Sending a message is split so that callers with an event loop (the TUI) can
// run the network call off the loop:
//
//	req, err := store.BeginSend(text)   // append user message, persist
//	out := store.Exchange(ctx, req)     // call the model, no state change
//	store.FinishSend(req, out)          // reconcile the reply
//
// SendMessage runs the three steps in sequence for blocking callers.
//
// Only one request is outstanding at a time: BeginSend returns
// ErrRequestInFlight while State().Busy is true, even after the user has
// switched to another chat. IsLoading only reports the active chat.
//
// Each request is tagged with the chat it was sent to. When it completes the
// reply is stored in that chat even if the user has switched away, but the
// visible fields (active messages, loading, error) only change if that chat
// is still the active one. A reply for a chat that was cleared meanwhile is
// dropped.
package session
