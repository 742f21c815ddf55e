// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/jeranaias/ollama-chat/internal/models"
	"github.com/jeranaias/ollama-chat/internal/session"
	"github.com/jeranaias/ollama-chat/internal/ui/styles"
	"github.com/jeranaias/ollama-chat/internal/util"
)

// focus is the pane receiving key input.
type focus int

const (
	focusInput focus = iota
	focusSidebar
)

// Empty-state texts.
const (
	NoChatText    = "Select a chat or start a new one"
	EmptyChatText = "Start a conversation by typing a message below"
)

// Loading texts.
const (
	ThinkingText         = "Thinking..."
	WaitingElsewhereText = "Waiting for a reply in another chat..."
)

// Options configures New.
type Options struct {
	// Context bounds the completions started by the UI. Defaults to Background.
	Context context.Context

	// WordWrap wraps rendered replies to the viewport width.
	WordWrap bool

	// MarkdownStyle is a glamour standard style name. Empty selects one
	// from the terminal background.
	MarkdownStyle string

	Logger *log.Logger
}

// Model is the Bubble Tea model for the chat interface.
type Model struct {
	store  *session.Store
	dir    *models.Directory
	ctx    context.Context
	logger *log.Logger

	// Styling
	theme    *styles.Theme
	keys     KeyMap
	markdown *markdownRenderer

	// Dimensions
	width  int
	height int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// focus and cursor drive the sidebar. Cursor 0 is the "New Chat" entry.
	focus  focus
	cursor int

	// state is the last snapshot taken from the store.
	state session.State
}

// New creates the chat model for store. dir may be nil when no model
// directory is available.
func New(store *session.Store, dir *models.Directory, theme *styles.Theme, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.PromptStyle = theme.InputPrompt
	ti.Placeholder = "Type your message..."
	ti.CharLimit = 8192
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := Model{
		store:    store,
		dir:      dir,
		ctx:      ctx,
		logger:   logger.WithPrefix("tui"),
		theme:    theme,
		keys:     DefaultKeyMap(),
		markdown: newMarkdownRenderer(opts.MarkdownStyle, opts.WordWrap),
		viewport: vp,
		input:    ti,
		spinner:  sp,
		focus:    focusInput,
	}
	m.refresh()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink, the spinner and the model directory fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, loadModelsCmd(m.ctx, m.store, m.dir))
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case CompletionMsg:
		m.store.FinishSend(msg.Request, msg.Outcome)
		m.refresh()
		return m, nil

	case ModelsLoadedMsg:
		if msg.Err != nil {
			m.logger.Warn("model list unavailable", "err", msg.Err)
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.layout()
	m.updateViewport()
	return m, nil
}

// layout sizes the viewport and the input for the current window.
func (m *Model) layout() {
	const (
		headerHeight = 1
		inputHeight  = 3
		statusHeight = 1
	)
	reserved := headerHeight + inputHeight + statusHeight
	if m.state.Error != "" {
		reserved++
	}
	if m.state.Busy {
		reserved++
	}

	mainWidth := m.theme.MainWidth()
	m.viewport.Width = mainWidth
	m.viewport.Height = max(m.height-reserved, 1)

	// Border and padding of the input container plus the prompt.
	m.input.Width = max(mainWidth-4-len(m.input.Prompt), 10)
	m.markdown.setWidth(mainWidth - 4)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleFocus):
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.cursor = m.activeCursor()
		} else {
			m.focus = focusInput
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		m.store.CreateConversation()
		m.focus = focusInput
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.ClearChat):
		m.store.ClearActiveConversation()
		m.cursor = 0
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.NextModel):
		if m.dir != nil {
			if next := m.dir.Next(m.state.SelectedModel); next != "" {
				m.store.SetModel(next)
				m.refresh()
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.state.Chats) {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Submit):
		if m.cursor == 0 {
			m.store.CreateConversation()
		} else {
			m.store.SelectConversation(m.state.Chats[m.cursor-1].ID)
		}
		m.focus = focusInput
		m.refresh()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	if m.state.Busy {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the input line and returns the command running the completion.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := util.NormalizeInput(m.input.Value())
	if text == "" || m.state.Busy {
		return m, nil
	}

	req, err := m.store.BeginSend(text)
	if err != nil {
		if !errors.Is(err, session.ErrRequestInFlight) && !errors.Is(err, session.ErrEmptyMessage) {
			m.logger.Error("send rejected", "err", err)
		}
		return m, nil
	}

	m.input.Reset()
	m.refresh()
	m.viewport.GotoBottom()
	return m, exchangeCmd(m.ctx, m.store, req)
}

// =============================================================================
// STATE
// =============================================================================

// refresh takes a new snapshot from the store and updates the components
// that depend on it.
func (m *Model) refresh() {
	m.state = m.store.State()

	if m.cursor > len(m.state.Chats) {
		m.cursor = len(m.state.Chats)
	}
	if m.state.Busy || m.focus != focusInput {
		m.input.Blur()
	} else {
		m.input.Focus()
	}

	if m.width > 0 {
		m.layout()
	}
	m.updateViewport()
}

// activeCursor returns the sidebar row of the active chat.
func (m Model) activeCursor() int {
	for i, c := range m.state.Chats {
		if c.ID == m.state.ActiveChatID {
			return i + 1
		}
	}
	return 0
}

func (m *Model) updateViewport() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderMessages())
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// State returns the last snapshot rendered.
func (m Model) State() session.State {
	return m.state
}

// Focused reports whether the input has focus.
func (m Model) Focused() bool {
	return m.input.Focused()
}

// InputValue returns the current contents of the input line.
func (m Model) InputValue() string {
	return m.input.Value()
}
