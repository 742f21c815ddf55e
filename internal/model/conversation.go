// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// PlaceholderTitle is the title of a chat that has not received a message yet.
const PlaceholderTitle = "New Chat"

// TitleMaxRunes is the number of characters of the first message kept in a title.
const TitleMaxRunes = 30

// titleEllipsis marks a title that was cut from a longer first message.
const titleEllipsis = "..."

// =============================================================================
// CHAT TYPE
// =============================================================================

// Chat holds one conversation: its identity, title and message history.
//
// Messages is exactly the append-ordered history of the chat.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewChat creates an empty chat with the placeholder title.
func NewChat(id string, createdAt time.Time) Chat {
	return Chat{
		ID:        id,
		Title:     PlaceholderTitle,
		Messages:  []Message{},
		CreatedAt: createdAt,
	}
}

// Clone returns a deep copy of the chat.
func (c Chat) Clone() Chat {
	c.Messages = CloneMessages(c.Messages)
	return c
}

// IsEmpty returns true if no message has been sent to the chat.
func (c Chat) IsEmpty() bool {
	return len(c.Messages) == 0
}

// MessageCount returns the number of messages in the chat.
func (c Chat) MessageCount() int {
	return len(c.Messages)
}

// CloneChats deep-copies a list of chats, preserving order.
func CloneChats(chats []Chat) []Chat {
	out := make([]Chat, len(chats))
	for i, c := range chats {
		out[i] = c.Clone()
	}
	return out
}

// IndexOf returns the position of the chat with the given ID, or -1.
func IndexOf(chats []Chat, id string) int {
	for i := range chats {
		if chats[i].ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// TITLES
// =============================================================================

// DeriveTitle builds a chat title from the first user message. Titles longer
// than TitleMaxRunes characters are cut and suffixed with "...".
func DeriveTitle(firstMessage string) string {
	runes := []rune(firstMessage)
	if len(runes) <= TitleMaxRunes {
		return firstMessage
	}
	return string(runes[:TitleMaxRunes]) + titleEllipsis
}
