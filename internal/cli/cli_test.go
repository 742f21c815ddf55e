// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ollama-chat/internal/config"
	"github.com/jeranaias/ollama-chat/internal/model"
	"github.com/jeranaias/ollama-chat/internal/models"
	"github.com/jeranaias/ollama-chat/internal/ollama"
	"github.com/jeranaias/ollama-chat/internal/openaicompat"
	"github.com/jeranaias/ollama-chat/internal/session"
	"github.com/jeranaias/ollama-chat/internal/storage"
)

// =============================================================================
// HELPERS
// =============================================================================

// isolate points HOME, the working directory and the data directory at
// temporary directories and clears the environment overrides.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	testChdir(t, t.TempDir())
	for _, key := range []string{config.EnvURL, config.EnvModel, config.EnvBackend, config.EnvStorage, config.EnvLog} {
		t.Setenv(key, "")
	}
	dataDir := t.TempDir()
	t.Setenv(config.EnvDataDir, dataDir)
	return dataDir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewApp().CreateRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

type memRepo struct{ chats []model.Chat }

func (r *memRepo) Load() []model.Chat             { return r.chats }
func (r *memRepo) Save(chats []model.Chat) error { r.chats = chats; return nil }

type echoCompleter struct{ err error }

func (c echoCompleter) Complete(_ context.Context, m string, h []model.Message) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return m + " says: " + h[len(h)-1].Content, nil
}

type fixedLister []string

func (l fixedLister) ModelNames(context.Context) ([]string, error) { return l, nil }

func newTestREPL(c session.Completer, dir *models.Directory) (*repl, *bytes.Buffer) {
	var out bytes.Buffer
	store := session.New(&memRepo{}, c)
	return newREPL(store, dir, &out), &out
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestVersionCommand(t *testing.T) {
	out, err := runCommand(t, "version", "--detailed")
	require.NoError(t, err)
	assert.Contains(t, out, "ollama-chat "+Version)
	assert.Contains(t, out, "commit:")
}

func TestModelsCommand(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"name":"llama2:latest"},{"name":"mistral:7b"}]}`))
	}))
	defer srv.Close()

	out, err := runCommand(t, "--url", srv.URL, "models")
	require.NoError(t, err)
	assert.Equal(t, "llama2:latest\nmistral:7b\n", out)
}

func TestModelsCommand_ServerDown(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := runCommand(t, "--url", url, "models")
	assert.Error(t, err)
}

func TestChatsCommand(t *testing.T) {
	dataDir := isolate(t)

	kv, err := storage.NewFileKV(dataDir)
	require.NoError(t, err)
	chat := model.NewChat("c1", time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC))
	chat.Title = "Why is the sky blue?"
	chat.Messages = []model.Message{model.NewUserMessage("Why is the sky blue?"), model.NewAssistantMessage("Rayleigh.")}
	require.NoError(t, storage.NewChatStore(kv, nil).Save([]model.Chat{chat}))

	out, err := runCommand(t, "chats")
	require.NoError(t, err)
	assert.Contains(t, out, "Why is the sky blue?")
	assert.Contains(t, out, "2 messages")
}

func TestChatsCommand_Empty(t *testing.T) {
	isolate(t)
	out, err := runCommand(t, "chats")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved chats.")
}

func TestInvalidBackendFlag(t *testing.T) {
	isolate(t)
	_, err := runCommand(t, "--backend", "carrier-pigeon", "chats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion.backend")
}

func TestNewBackend(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, &ollama.Client{}, newBackend(cfg))

	cfg.Completion.Backend = config.BackendOpenAI
	assert.IsType(t, &openaicompat.Client{}, newBackend(cfg))
}

// =============================================================================
// REPL
// =============================================================================

func TestREPL_SendCreatesChat(t *testing.T) {
	r, out := newTestREPL(echoCompleter{}, nil)

	quit := r.handle(context.Background(), "  hello there ")
	assert.False(t, quit)

	st := r.store.State()
	require.Len(t, st.Chats, 1)
	assert.Equal(t, "hello there", st.Chats[0].Title)
	assert.Contains(t, out.String(), "llama2 says: hello there")
}

func TestREPL_SendFailureShowsError(t *testing.T) {
	r, out := newTestREPL(echoCompleter{err: errors.New("refused")}, nil)

	r.handle(context.Background(), "hello")

	assert.Contains(t, out.String(), session.CompletionErrorMessage)
	assert.Len(t, r.store.State().ActiveMessages, 1)
}

func TestREPL_ChatManagement(t *testing.T) {
	r, out := newTestREPL(echoCompleter{}, nil)
	ctx := context.Background()

	r.handle(ctx, "first chat")
	r.handle(ctx, "/new")
	r.handle(ctx, "second chat")

	out.Reset()
	r.handle(ctx, "/list")
	list := out.String()
	assert.Contains(t, list, "* 1  second chat")
	assert.Contains(t, list, "  2  first chat")

	out.Reset()
	r.handle(ctx, "/select 2")
	assert.Contains(t, out.String(), "llama2 says: first chat")
	assert.Equal(t, "first chat", mustActive(t, r).Title)

	r.handle(ctx, "/clear")
	st := r.store.State()
	assert.False(t, st.HasActive())
	require.Len(t, st.Chats, 1)
	assert.Equal(t, "second chat", st.Chats[0].Title)
}

func TestREPL_SelectErrors(t *testing.T) {
	r, out := newTestREPL(echoCompleter{}, nil)
	ctx := context.Background()
	r.handle(ctx, "/new")

	for _, input := range []string{"/select", "/select 0", "/select 9", "/select x"} {
		out.Reset()
		r.handle(ctx, input)
		assert.NotEmpty(t, out.String(), input)
	}
	assert.Len(t, r.store.State().Chats, 1)
}

func TestREPL_Models(t *testing.T) {
	dir := models.NewDirectory(fixedLister{"mistral", "phi"}, nil)
	r, out := newTestREPL(echoCompleter{}, dir)
	ctx := context.Background()

	r.handle(ctx, "/models")
	assert.Contains(t, out.String(), "mistral")
	assert.Contains(t, out.String(), "phi")

	out.Reset()
	r.handle(ctx, "/model phi")
	assert.Equal(t, "phi", r.store.SelectedModel())
	assert.NotContains(t, out.String(), "not in the server's list")

	out.Reset()
	r.handle(ctx, "/model custom")
	assert.Equal(t, "custom", r.store.SelectedModel())
	assert.Contains(t, out.String(), "not in the server's list")

	out.Reset()
	r.handle(ctx, "/model")
	assert.Contains(t, out.String(), "custom")

	out.Reset()
	r.handle(ctx, "/models")
	assert.NotContains(t, out.String(), "* ")
}

func TestREPL_QuitAndUnknown(t *testing.T) {
	r, out := newTestREPL(echoCompleter{}, nil)
	ctx := context.Background()

	assert.False(t, r.handle(ctx, "/bogus"))
	assert.Contains(t, out.String(), "Unknown command /bogus")
	assert.False(t, r.handle(ctx, "   "))
	assert.True(t, r.handle(ctx, "/quit"))
	assert.True(t, r.handle(ctx, "/EXIT"))
}

func TestREPL_DoubleSlashSendsLiteralMessage(t *testing.T) {
	r, out := newTestREPL(echoCompleter{}, nil)

	assert.False(t, r.handle(context.Background(), "//etc/hosts is empty, why?"))

	st := r.store.State()
	require.Len(t, st.ActiveMessages, 2)
	assert.Equal(t, "/etc/hosts is empty, why?", st.ActiveMessages[0].Content)
	assert.Equal(t, "/etc/hosts is empty, why?", st.Chats[0].Title)
	assert.Contains(t, out.String(), "llama2 says: /etc/hosts is empty, why?")
	assert.NotContains(t, out.String(), "Unknown command")
}

func TestREPL_UnknownCommandIsNotSent(t *testing.T) {
	r, out := newTestREPL(echoCompleter{}, nil)

	r.handle(context.Background(), "/etc/hosts is empty")

	assert.Empty(t, r.store.State().Chats)
	assert.Contains(t, out.String(), "start with // to send it as a message")
}

func TestREPL_HelpListsEveryCommand(t *testing.T) {
	r, out := newTestREPL(echoCompleter{}, nil)

	r.handle(context.Background(), "/help")

	for _, cmd := range []string{"/new", "/list", "/select", "/clear", "/model", "/models", "/export", "/help", "/quit", "//"} {
		assert.Contains(t, out.String(), cmd)
	}
}

func TestCompleteSlash(t *testing.T) {
	assert.Nil(t, completeSlash("hello"))
	assert.Equal(t, []string{"/model ", "/models"}, completeSlash("/mo"))
	assert.Equal(t, []string{"/select "}, completeSlash("/s"))
}

func mustActive(t *testing.T, r *repl) model.Chat {
	t.Helper()
	c, ok := r.store.State().ActiveChat()
	require.True(t, ok)
	return c
}

func TestREPL_Export(t *testing.T) {
	r, out := newTestREPL(echoCompleter{}, nil)
	r.exportDir = t.TempDir()
	ctx := context.Background()

	r.handle(ctx, "/export")
	assert.Contains(t, out.String(), "No chat selected.")

	r.handle(ctx, "export me")
	out.Reset()
	r.handle(ctx, "/export json")
	assert.Contains(t, out.String(), "Saved "+r.exportDir)
	assert.Contains(t, out.String(), ".json")
}

func TestExportCommand(t *testing.T) {
	dataDir := isolate(t)
	kv, err := storage.NewFileKV(dataDir)
	require.NoError(t, err)
	chat := model.NewChat("c1", time.Now())
	chat.Title = "exported"
	chat.Messages = []model.Message{model.NewUserMessage("exported")}
	require.NoError(t, storage.NewChatStore(kv, nil).Save([]model.Chat{chat}))

	outDir := t.TempDir()
	out, err := runCommand(t, "export", "1", "--format", "markdown", "--output", outDir)
	require.NoError(t, err)
	assert.Contains(t, out, outDir)
	assert.Contains(t, out, ".md")

	_, err = runCommand(t, "export", "2")
	assert.Error(t, err)
}
