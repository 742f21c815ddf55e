// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Chat: a titled, append-only sequence of messages with a stable ID
//   - Message: a single user or assistant turn
//   - Role: message role enumeration (user, assistant)
//
// # Titles
//
// A chat starts with PlaceholderTitle. The first user message sent to it
// produces its permanent title through DeriveTitle:
//
//	chat := model.NewChat(id, time.Now())
//	chat.Title = model.DeriveTitle("How do I reverse a slice in Go?")
package model
