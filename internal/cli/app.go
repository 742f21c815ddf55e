// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the ollama-chat command line.
//
// Commands:
//
//	ollama-chat            TUI when attached to a terminal, REPL otherwise
//	ollama-chat tui        full-screen chat
//	ollama-chat chat       line-based chat with slash commands
//	ollama-chat models     list the models the server offers
//	ollama-chat chats      list saved chats
//	ollama-chat export N   write chat N to a Markdown or JSON file
//	ollama-chat version    print version information
//
// Global flags --config, --url, --model and --backend override the
// configuration file and environment.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set at build time with -ldflags).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App holds the global flag values shared by all commands.
type App struct {
	ConfigPath string
	BaseURL    string
	Model      string
	Backend    string
}

// NewApp creates a new CLI application.
func NewApp() *App {
	return &App{}
}

// CreateRootCommand creates and configures the root command.
func (app *App) CreateRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ollama-chat",
		Short: "Chat with local models served by Ollama",
		Long: `ollama-chat is a terminal client for a local Ollama server. Chats are
saved between runs; each chat keeps its own history and title.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if IsInteractive() {
				return app.runTUI(cmd)
			}
			return app.runREPL(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.ConfigPath, "config", "", "Config file (default ~/.ollama-chat/config.toml)")
	rootCmd.PersistentFlags().StringVar(&app.BaseURL, "url", "", "Ollama server URL")
	rootCmd.PersistentFlags().StringVarP(&app.Model, "model", "m", "", "Model to start with")
	rootCmd.PersistentFlags().StringVar(&app.Backend, "backend", "", "Completion backend: ollama or openai")

	app.addTUICommand(rootCmd)
	app.addChatCommand(rootCmd)
	app.addModelsCommand(rootCmd)
	app.addChatsCommand(rootCmd)
	app.addExportCommand(rootCmd)
	app.addVersionCommand(rootCmd)

	return rootCmd
}

// Execute runs the command line and exits with status 1 on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if err := NewApp().CreateRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
