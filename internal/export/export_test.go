// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ollama-chat/internal/model"
)

var exportTime = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

func sampleChat() model.Chat {
	c := model.NewChat("c1", time.Date(2025, 6, 30, 8, 15, 0, 0, time.UTC))
	c.Title = "How do I sort: a map?"
	c.Messages = []model.Message{
		model.NewUserMessage("How do I sort: a map?"),
		model.NewAssistantMessage("Collect the keys, then:\n\n```go\nsort.Strings(keys)\n```"),
	}
	return c
}

func testOptions(dir string) *Options {
	return &Options{OutputDir: dir, IncludeMetadata: true, Now: func() time.Time { return exportTime }}
}

func TestMarkdownExporter(t *testing.T) {
	out, err := NewMarkdownExporter(testOptions("")).Export(sampleChat())
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\n"))
	assert.Contains(t, md, `title: "How do I sort: a map?"`)
	assert.Contains(t, md, "exported: 2025-07-01T12:00:00Z")
	assert.Contains(t, md, "messages: 2")
	assert.Contains(t, md, "# How do I sort: a map?")
	assert.Contains(t, md, "### You\n\nHow do I sort: a map?")
	assert.Contains(t, md, "### Assistant\n\nCollect the keys")
	assert.Contains(t, md, "```go\nsort.Strings(keys)\n```")
}

func TestMarkdownExporter_WithoutMetadata(t *testing.T) {
	out, err := NewMarkdownExporter(&Options{}).Export(sampleChat())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "# "))
}

func TestMarkdownExporter_EscapesTitle(t *testing.T) {
	c := sampleChat()
	c.Title = "# not_a *heading*"
	out, err := NewMarkdownExporter(&Options{}).Export(c)
	require.NoError(t, err)
	assert.Contains(t, string(out), `# \# not\_a \*heading\*`)
}

func TestJSONExporter_MatchesStoredLayout(t *testing.T) {
	out, err := NewJSONExporter().Export(sampleChat())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(out, &raw))
	assert.ElementsMatch(t, []string{"id", "title", "messages", "createdAt"}, keys(raw))

	var back model.Chat
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, sampleChat().Messages, back.Messages)
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()

	path, err := ExportToFile(sampleChat(), NewMarkdownExporter(nil), testOptions(dir))
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Equal(t, "chat_How_do_I_sort-_a_map-_20250701_120000.md", filepath.Base(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "sort.Strings")
}

func TestExportToFile_CreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "june")

	path, err := ExportToFile(sampleChat(), NewJSONExporter(), testOptions(dir))
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestExportToFile_EmptyChat(t *testing.T) {
	_, err := ExportToFile(model.NewChat("x", exportTime), NewJSONExporter(), testOptions(t.TempDir()))
	assert.ErrorIs(t, err, ErrEmptyChat)
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		ext    string
		err    bool
	}{
		{"markdown", ".md", false},
		{"MD", ".md", false},
		{"", ".md", false},
		{"json", ".json", false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		e, err := ForFormat(tt.format, nil)
		if tt.err {
			assert.Error(t, err, tt.format)
			continue
		}
		require.NoError(t, err, tt.format)
		assert.Equal(t, tt.ext, e.FileExtension())
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"":                      "chat",
		"a/b\\c":                "a-b-c",
		"hello world":           "hello_world",
		"truncated title...":    "truncated_title",
		strings.Repeat("x", 80): strings.Repeat("x", 50),
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
