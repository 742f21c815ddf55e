// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ollama-chat/internal/model"
	"github.com/jeranaias/ollama-chat/internal/models"
	"github.com/jeranaias/ollama-chat/internal/session"
	"github.com/jeranaias/ollama-chat/internal/ui/styles"
)

// =============================================================================
// HELPERS
// =============================================================================

type memRepo struct {
	mu    sync.Mutex
	chats []model.Chat
}

func (r *memRepo) Load() []model.Chat { return nil }

func (r *memRepo) Save(chats []model.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats = chats
	return nil
}

type stubCompleter struct {
	reply string
	err   error
}

func (c stubCompleter) Complete(context.Context, string, []model.Message) (string, error) {
	return c.reply, c.err
}

type stubLister []string

func (l stubLister) ModelNames(context.Context) ([]string, error) { return l, nil }

func newTestModel(t *testing.T, c session.Completer, dir *models.Directory) (Model, *session.Store) {
	t.Helper()
	store := session.New(&memRepo{}, c)
	theme := styles.NewThemeWithProfile(termenv.Ascii, true)
	m := New(store, dir, theme, Options{MarkdownStyle: "notty", WordWrap: true})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), store
}

func typeText(m Model, text string) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(Model)
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	updated, cmd := m.Update(tea.KeyMsg{Type: k})
	return updated.(Model), cmd
}

// =============================================================================
// TESTS
// =============================================================================

func TestModel_EmptyStates(t *testing.T) {
	m, _ := newTestModel(t, stubCompleter{reply: "hi"}, nil)
	assert.Contains(t, m.View(), NoChatText)

	m, _ = press(m, tea.KeyCtrlN)
	assert.Contains(t, m.View(), EmptyChatText)
	assert.Len(t, m.State().Chats, 1)
}

func TestModel_SendAndReceive(t *testing.T) {
	m, store := newTestModel(t, stubCompleter{reply: "Hello **there**"}, nil)

	m = typeText(m, "  hi model  ")
	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)

	assert.True(t, m.State().IsLoading)
	assert.False(t, m.Focused(), "input is disabled while loading")
	assert.Empty(t, m.InputValue())
	assert.Equal(t, "hi model", m.State().Chats[0].Title)
	assert.Contains(t, m.View(), ThinkingText)

	msg := cmd()
	require.IsType(t, CompletionMsg{}, msg)
	updated, _ := m.Update(msg)
	m = updated.(Model)

	st := m.State()
	assert.False(t, st.IsLoading)
	assert.True(t, m.Focused())
	require.Len(t, st.ActiveMessages, 2)
	assert.Equal(t, "Hello **there**", st.ActiveMessages[1].Content)
	assert.Equal(t, store.State(), st)

	view := m.View()
	assert.Contains(t, view, "Assistant")
	assert.Contains(t, view, "there")
}

func TestModel_SubmitBlankIsIgnored(t *testing.T) {
	m, _ := newTestModel(t, stubCompleter{reply: "hi"}, nil)

	m = typeText(m, "   ")
	m, cmd := press(m, tea.KeyEnter)

	assert.Nil(t, cmd)
	assert.Empty(t, m.State().Chats)
}

func TestModel_TypingIgnoredWhileLoading(t *testing.T) {
	m, _ := newTestModel(t, stubCompleter{reply: "hi"}, nil)

	m = typeText(m, "first")
	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)

	m = typeText(m, "second")
	m, cmd2 := press(m, tea.KeyEnter)
	assert.Nil(t, cmd2)
	assert.Empty(t, m.InputValue())
	assert.Len(t, m.State().ActiveMessages, 1)
}

func TestModel_InputDisabledWhileOtherChatWaits(t *testing.T) {
	m, _ := newTestModel(t, stubCompleter{reply: "late answer"}, nil)

	m = typeText(m, "question")
	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)

	m, _ = press(m, tea.KeyCtrlN)
	st := m.State()
	assert.False(t, st.IsLoading)
	assert.True(t, st.Busy)
	assert.False(t, m.Focused(), "input stays disabled while any reply is pending")
	assert.Contains(t, m.View(), WaitingElsewhereText)

	m = typeText(m, "second")
	m, cmd2 := press(m, tea.KeyEnter)
	assert.Nil(t, cmd2)
	assert.Empty(t, m.State().ActiveMessages)

	updated, _ := m.Update(cmd())
	m = updated.(Model)
	assert.False(t, m.State().Busy)
	assert.True(t, m.Focused())
	assert.NotContains(t, m.View(), WaitingElsewhereText)
}

func TestModel_FailureShowsErrorBanner(t *testing.T) {
	m, _ := newTestModel(t, stubCompleter{err: errors.New("refused")}, nil)

	m = typeText(m, "hello")
	m, cmd := press(m, tea.KeyEnter)
	updated, _ := m.Update(cmd())
	m = updated.(Model)

	assert.Equal(t, session.CompletionErrorMessage, m.State().Error)
	assert.Contains(t, m.View(), session.CompletionErrorMessage)
	assert.Len(t, m.State().ActiveMessages, 1)
}

func TestModel_ReplyAfterSwitchingChatStaysInItsChat(t *testing.T) {
	m, _ := newTestModel(t, stubCompleter{reply: "late answer"}, nil)

	m = typeText(m, "question")
	m, cmd := press(m, tea.KeyEnter)
	firstID := m.State().ActiveChatID

	m, _ = press(m, tea.KeyCtrlN)
	assert.False(t, m.State().IsLoading)

	updated, _ := m.Update(cmd())
	m = updated.(Model)

	assert.Empty(t, m.State().ActiveMessages)
	assert.NotContains(t, m.View(), "late answer")

	chats := m.State().Chats
	i := model.IndexOf(chats, firstID)
	require.GreaterOrEqual(t, i, 0)
	assert.Len(t, chats[i].Messages, 2)
}

func TestModel_SidebarSelection(t *testing.T) {
	m, _ := newTestModel(t, stubCompleter{reply: "r"}, nil)

	m = typeText(m, "older chat")
	m, cmd := press(m, tea.KeyEnter)
	updated, _ := m.Update(cmd())
	m = updated.(Model)
	olderID := m.State().ActiveChatID

	m, _ = press(m, tea.KeyCtrlN)
	require.NotEqual(t, olderID, m.State().ActiveChatID)

	m, _ = press(m, tea.KeyEsc)
	assert.False(t, m.Focused())
	assert.Equal(t, 1, m.cursor, "cursor starts on the active chat")

	m, _ = press(m, tea.KeyDown)
	m, _ = press(m, tea.KeyEnter)

	assert.Equal(t, olderID, m.State().ActiveChatID)
	assert.Len(t, m.State().ActiveMessages, 2)
	assert.True(t, m.Focused())
}

func TestModel_SidebarNewChatEntry(t *testing.T) {
	m, _ := newTestModel(t, stubCompleter{reply: "r"}, nil)

	m, _ = press(m, tea.KeyEsc)
	m, _ = press(m, tea.KeyUp)
	m, _ = press(m, tea.KeyEnter)

	assert.Len(t, m.State().Chats, 1)
	assert.True(t, m.State().HasActive())
}

func TestModel_ClearChat(t *testing.T) {
	m, _ := newTestModel(t, stubCompleter{reply: "r"}, nil)
	m, _ = press(m, tea.KeyCtrlN)
	require.True(t, m.State().HasActive())

	m, _ = press(m, tea.KeyCtrlX)

	assert.False(t, m.State().HasActive())
	assert.Empty(t, m.State().Chats)
	assert.Contains(t, m.View(), NoChatText)
}

func TestModel_ModelDirectory(t *testing.T) {
	dir := models.NewDirectory(stubLister{"mistral", "llama2", "phi"}, nil)
	m, _ := newTestModel(t, stubCompleter{reply: "r"}, dir)
	assert.Equal(t, session.DefaultModel, m.State().SelectedModel)

	msg := loadModelsCmd(context.Background(), m.store, dir)()
	updated, _ := m.Update(msg)
	m = updated.(Model)
	assert.Equal(t, "mistral", m.State().SelectedModel)

	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, "llama2", m.State().SelectedModel)
	assert.Contains(t, m.View(), "llama2")
}

func TestModel_QuitKey(t *testing.T) {
	m, _ := newTestModel(t, stubCompleter{reply: "r"}, nil)
	_, cmd := press(m, tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_NarrowLayoutHidesSidebar(t *testing.T) {
	m, _ := newTestModel(t, stubCompleter{reply: "r"}, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 50, Height: 20})
	m = updated.(Model)

	assert.NotContains(t, m.View(), "New Chat")
}
