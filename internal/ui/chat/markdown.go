// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders assistant replies. The glamour renderer is rebuilt
// when the wrap width changes.
type markdownRenderer struct {
	style    string
	wordWrap bool
	width    int
	tr       *glamour.TermRenderer
}

func newMarkdownRenderer(style string, wordWrap bool) *markdownRenderer {
	return &markdownRenderer{style: style, wordWrap: wordWrap}
}

func (r *markdownRenderer) setWidth(width int) {
	if width == r.width && r.tr != nil {
		return
	}
	r.width = width

	opts := []glamour.TermRendererOption{glamour.WithEmoji()}
	if r.style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(r.style))
	}
	if r.wordWrap && width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	} else {
		opts = append(opts, glamour.WithWordWrap(0))
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		r.tr = nil
		return
	}
	r.tr = tr
}

// render returns content as terminal markdown, or unchanged when rendering
// is unavailable or fails.
func (r *markdownRenderer) render(content string) string {
	if r.tr == nil {
		return content
	}
	out, err := r.tr.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
