// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TITLE TESTS
// =============================================================================

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"short", "hello", "hello"},
		{"exactly thirty", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"thirty one", strings.Repeat("b", 31), strings.Repeat("b", 30) + "..."},
		{"forty chars", "abcdefghijklmnopqrstuvwxyz0123456789ABCD", "abcdefghijklmnopqrstuvwxyz0123" + "..."},
		{"multibyte kept whole", strings.Repeat("é", 31), strings.Repeat("é", 30) + "..."},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveTitle(tc.input))
		})
	}
}

// =============================================================================
// CHAT TESTS
// =============================================================================

func TestNewChat(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewChat("abc", now)

	assert.Equal(t, "abc", c.ID)
	assert.Equal(t, PlaceholderTitle, c.Title)
	assert.True(t, c.IsEmpty())
	assert.NotNil(t, c.Messages)
	assert.Equal(t, now, c.CreatedAt)
}

func TestChat_CloneIsDeep(t *testing.T) {
	c := NewChat("abc", time.Now())
	c.Messages = append(c.Messages, NewUserMessage("hi"))

	clone := c.Clone()
	clone.Messages[0].Content = "changed"

	assert.Equal(t, "hi", c.Messages[0].Content)
}

func TestAppendMessage_DoesNotAlias(t *testing.T) {
	base := make([]Message, 1, 4)
	base[0] = NewUserMessage("one")

	a := AppendMessage(base, NewAssistantMessage("two"))
	b := AppendMessage(base, NewAssistantMessage("other"))

	require.Len(t, a, 2)
	require.Len(t, b, 2)
	assert.Equal(t, "two", a[1].Content)
	assert.Equal(t, "other", b[1].Content)
	assert.Len(t, base, 1)
}

func TestIndexOf(t *testing.T) {
	chats := []Chat{NewChat("a", time.Now()), NewChat("b", time.Now())}

	assert.Equal(t, 0, IndexOf(chats, "a"))
	assert.Equal(t, 1, IndexOf(chats, "b"))
	assert.Equal(t, -1, IndexOf(chats, "missing"))
}

func TestEqualMessages(t *testing.T) {
	a := []Message{NewUserMessage("x"), NewAssistantMessage("y")}

	assert.True(t, EqualMessages(a, CloneMessages(a)))
	assert.False(t, EqualMessages(a, a[:1]))
	assert.False(t, EqualMessages(a, []Message{NewUserMessage("x"), NewAssistantMessage("z")}))
	assert.True(t, EqualMessages(nil, []Message{}))
}

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole(t *testing.T) {
	assert.True(t, RoleUser.IsValid())
	assert.True(t, RoleAssistant.IsValid())
	assert.False(t, Role("system").IsValid())
	assert.Equal(t, "You", RoleUser.DisplayName())
	assert.Equal(t, "Assistant", RoleAssistant.DisplayName())
}
