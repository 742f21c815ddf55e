// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/ollama-chat/internal/config"
	"github.com/jeranaias/ollama-chat/internal/model"
	"github.com/jeranaias/ollama-chat/internal/models"
	"github.com/jeranaias/ollama-chat/internal/session"
	"github.com/jeranaias/ollama-chat/internal/util"
)

func (app *App) addChatCommand(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "chat",
		Short: "Start a line-based chat session",
		Long: "Start a line-based chat session. Type a message to send it to the\n" +
			"selected model, or a slash command:\n\n  " +
			strings.Join(helpLines, "\n  ") +
			"\n\nStart a message with // to send a literal leading slash.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runREPL(cmd)
		},
	})
}

func (app *App) runREPL(cmd *cobra.Command) error {
	s, err := app.open(logToFile)
	if err != nil {
		return err
	}
	defer s.close()

	out := cmd.OutOrStdout()
	r := newREPL(s.store, s.dir, out)
	if IsStdoutTTY() {
		r.markdown = newTerminalMarkdown(TerminalWidth())
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completeSlash)

	historyFile := replHistoryPath()
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer saveREPLHistory(line, historyFile)

	ctx := cmd.Context()
	if err := s.store.LoadModels(ctx, s.dir); err != nil {
		fmt.Fprintln(out, errorStyle.Render(session.ModelFetchErrorMessage+": "+err.Error()))
	}
	fmt.Fprintln(out, infoStyle.Render(fmt.Sprintf("ollama-chat %s - model %s - /help for commands", Version, s.store.SelectedModel())))

	for {
		input, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)

		if r.handle(ctx, input) {
			return nil
		}
	}
}

// =============================================================================
// REPL
// =============================================================================

// repl executes chat input against a store and prints the results.
type repl struct {
	store    *session.Store
	dir      *models.Directory
	out      io.Writer
	markdown func(string) string

	// exportDir receives /export files.
	exportDir string
}

func newREPL(store *session.Store, dir *models.Directory, out io.Writer) *repl {
	return &repl{
		store:     store,
		dir:       dir,
		out:       out,
		markdown:  func(s string) string { return s },
		exportDir: ".",
	}
}

// handle processes one input line. It returns true when the session should end.
func (r *repl) handle(ctx context.Context, input string) bool {
	text := util.NormalizeInput(input)
	if text == "" {
		return false
	}
	if !strings.HasPrefix(text, "/") {
		r.send(ctx, text)
		return false
	}
	if strings.HasPrefix(text, "//") {
		r.send(ctx, text[1:])
		return false
	}

	fields := strings.Fields(text)
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "/quit", "/q", "/exit":
		return true
	case "/help", "/h", "/?":
		r.printHelp()
	case "/new", "/n":
		r.store.CreateConversation()
		r.info("Started a new chat.")
	case "/list", "/l":
		st := r.store.State()
		writeChatList(r.out, st.Chats, st.ActiveChatID)
	case "/select", "/s":
		r.selectChat(args)
	case "/clear", "/c":
		if r.store.ClearActiveConversation() {
			r.info("Chat deleted.")
		} else {
			r.info("No chat selected.")
		}
	case "/model", "/m":
		if len(args) == 0 {
			r.info("Model: " + r.store.SelectedModel())
			return false
		}
		r.store.SetModel(args[0])
		if r.dir != nil && r.dir.Fetched() && !r.dir.Contains(args[0]) {
			r.info(fmt.Sprintf("Model set to %s (not in the server's list).", args[0]))
			return false
		}
		r.info("Model set to " + args[0] + ".")
	case "/models":
		r.printModels(ctx)
	case "/export", "/e":
		r.exportActive(args)
	default:
		r.errorf("Unknown command %s. Type /help for commands, or start with // to send it as a message.", cmd)
	}
	return false
}

func (r *repl) send(ctx context.Context, text string) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintln(r.out, dimStyle.Render("Thinking..."))
	if err := r.store.SendMessage(ctx, text); err != nil {
		r.errorf("%v", err)
		return
	}

	st := r.store.State()
	if st.Error != "" {
		r.errorf("%s", st.Error)
		return
	}
	if n := len(st.ActiveMessages); n > 0 && st.ActiveMessages[n-1].IsAssistant() {
		fmt.Fprintln(r.out, assistantStyle.Render(model.RoleAssistant.DisplayName()+":"))
		fmt.Fprintln(r.out, r.markdown(st.ActiveMessages[n-1].Content))
	}
}

func (r *repl) selectChat(args []string) {
	st := r.store.State()
	if len(args) != 1 {
		r.errorf("Usage: /select N (1-%d)", len(st.Chats))
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(st.Chats) {
		r.errorf("No chat %s. Use /list to see chats.", args[0])
		return
	}
	r.store.SelectConversation(st.Chats[n-1].ID)
	r.printTranscript()
}

func (r *repl) printTranscript() {
	st := r.store.State()
	if c, ok := st.ActiveChat(); ok {
		fmt.Fprintln(r.out, promptStyle.Render(c.Title))
	}
	for _, msg := range st.ActiveMessages {
		if msg.IsAssistant() {
			fmt.Fprintln(r.out, assistantStyle.Render(msg.Role.DisplayName()+":"))
			fmt.Fprintln(r.out, r.markdown(msg.Content))
			continue
		}
		fmt.Fprintln(r.out, promptStyle.Render(msg.Role.DisplayName()+":")+" "+msg.Content)
	}
}

func (r *repl) printModels(ctx context.Context) {
	if r.dir == nil {
		r.errorf("%s", session.ModelFetchErrorMessage)
		return
	}
	if !r.dir.Fetched() || r.dir.Err() != nil {
		if _, err := r.dir.Fetch(ctx); err != nil {
			r.errorf("%s: %v", session.ModelFetchErrorMessage, err)
			return
		}
	}
	selected := r.store.SelectedModel()
	for _, name := range r.dir.Names() {
		marker := "  "
		if name == selected {
			marker = "* "
		}
		fmt.Fprintln(r.out, marker+name)
	}
}

func (r *repl) exportActive(args []string) {
	c, ok := r.store.State().ActiveChat()
	if !ok {
		r.errorf("No chat selected.")
		return
	}
	format := ""
	if len(args) > 0 {
		format = args[0]
	}
	path, err := exportChat(c, format, r.exportDir)
	if err != nil {
		r.errorf("Export failed: %v", err)
		return
	}
	r.info("Saved " + path)
}

func (r *repl) printHelp() {
	for _, l := range helpLines {
		fmt.Fprintln(r.out, infoStyle.Render(l))
	}
	fmt.Fprintln(r.out, dimStyle.Render("Start a message with // to send a literal leading slash."))
}

func (r *repl) info(msg string) {
	fmt.Fprintln(r.out, infoStyle.Render(msg))
}

func (r *repl) errorf(format string, args ...any) {
	fmt.Fprintln(r.out, errorStyle.Render(fmt.Sprintf(format, args...)))
}

// =============================================================================
// HELPERS
// =============================================================================

// helpLines is shown by /help and in the chat command's long help.
var helpLines = []string{
	"/new          start a new chat",
	"/list         list chats",
	"/select N     switch to chat N from /list",
	"/clear        delete the current chat",
	"/model [name] show or set the model",
	"/models       list available models",
	"/export [fmt] save the current chat as markdown or json",
	"/help         show this help",
	"/quit         exit",
}

var slashCommands = []string{"/new", "/list", "/select ", "/clear", "/model ", "/models", "/export ", "/help", "/quit"}

// completeSlash completes slash commands for liner.
func completeSlash(line string) []string {
	if !strings.HasPrefix(line, "/") {
		return nil
	}
	var out []string
	for _, c := range slashCommands {
		if strings.HasPrefix(c, line) {
			out = append(out, c)
		}
	}
	return out
}

// newTerminalMarkdown returns a glamour renderer for replies, falling back
// to plain text when it cannot be built.
func newTerminalMarkdown(width int) func(string) string {
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return func(s string) string { return s }
	}
	return func(s string) string {
		out, err := tr.Render(s)
		if err != nil {
			return s
		}
		return strings.Trim(out, "\n")
	}
}

func replHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chat_history")
}

func saveREPLHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
