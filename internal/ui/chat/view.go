// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ollama-chat/internal/model"
	"github.com/jeranaias/ollama-chat/internal/ui/styles"
	"github.com/jeranaias/ollama-chat/internal/util"
)

// View renders the chat interface.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	main := m.renderMain()
	if !m.theme.ShowSidebar() {
		return main
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), main)
}

func (m Model) renderMain() string {
	parts := []string{m.renderHeader()}
	if m.state.Error != "" {
		parts = append(parts, m.theme.ErrorBanner.Width(m.theme.MainWidth()).Render(m.state.Error))
	}
	parts = append(parts, m.viewport.View())
	switch {
	case m.state.IsLoading:
		parts = append(parts, m.spinner.View()+" "+m.theme.Loading.Render(ThinkingText))
	case m.state.Busy:
		parts = append(parts, m.spinner.View()+" "+m.theme.Loading.Render(WaitingElsewhereText))
	}
	parts = append(parts, m.renderInput(), m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar() string {
	inner := styles.SidebarWidth - 4
	var b strings.Builder

	newLabel := "+ New Chat"
	if m.focus == focusSidebar && m.cursor == 0 {
		b.WriteString(m.theme.SidebarSelected.Render(util.PadRight(newLabel, inner)))
	} else {
		b.WriteString(m.theme.SidebarNew.Render(newLabel))
	}
	b.WriteString("\n\n")

	for i, c := range m.state.Chats {
		title := util.PadRight(util.SingleLine(c.Title), inner)
		switch {
		case m.focus == focusSidebar && m.cursor == i+1:
			title = m.theme.SidebarSelected.Render(title)
		case c.ID == m.state.ActiveChatID:
			title = m.theme.SidebarActive.Render(title)
		default:
			title = m.theme.SidebarItem.Render(title)
		}
		b.WriteString(title)
		b.WriteString("\n")
		b.WriteString(m.theme.SidebarDate.Render(c.CreatedAt.Local().Format("Jan 2, 2006")))
		b.WriteString("\n")
	}

	style := m.theme.Sidebar
	if m.focus == focusSidebar {
		style = m.theme.SidebarFocused
	}
	return style.Height(max(m.height-2, 1)).Render(strings.TrimRight(b.String(), "\n"))
}

// =============================================================================
// CONVERSATION
// =============================================================================

func (m Model) renderHeader() string {
	title := "ollama-chat"
	if c, ok := m.state.ActiveChat(); ok {
		title = util.SingleLine(c.Title)
	}
	modelName := m.theme.ModelBadge.Render("● " + m.state.SelectedModel)
	avail := m.theme.MainWidth() - lipgloss.Width(modelName) - 3
	title = m.theme.HeaderTitle.Render(util.TruncateWidth(title, avail))

	gap := max(m.theme.MainWidth()-lipgloss.Width(title)-lipgloss.Width(modelName)-2, 1)
	return m.theme.Header.Render(title + strings.Repeat(" ", gap) + modelName)
}

// renderMessages renders the active conversation for the viewport.
func (m Model) renderMessages() string {
	if !m.state.HasActive() {
		return m.theme.EmptyState.Render(NoChatText)
	}
	if len(m.state.ActiveMessages) == 0 {
		return m.theme.EmptyState.Render(EmptyChatText)
	}

	width := max(m.theme.MainWidth()-2, 10)
	blocks := make([]string, 0, len(m.state.ActiveMessages))
	for _, msg := range m.state.ActiveMessages {
		blocks = append(blocks, m.renderMessage(msg, width))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg model.Message, width int) string {
	if msg.IsAssistant() {
		label := m.theme.AssistantLabel.Render(msg.Role.DisplayName())
		return label + "\n" + m.theme.AssistantBubble.Render(m.markdown.render(msg.Content))
	}
	label := m.theme.UserLabel.Render(msg.Role.DisplayName())
	return label + "\n" + m.theme.UserBubble.Width(width).Render(msg.Content)
}

// =============================================================================
// INPUT AND STATUS
// =============================================================================

func (m Model) renderInput() string {
	style := m.theme.InputContainer
	if m.input.Focused() {
		style = m.theme.InputContainerFocused
	}
	return style.Width(max(m.theme.MainWidth()-2, 1)).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.theme.StatusBar.Render(util.TruncateWidth(strings.Join(parts, "  "), m.theme.MainWidth()))
}
