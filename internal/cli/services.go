// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/ollama-chat/internal/config"
	"github.com/jeranaias/ollama-chat/internal/logging"
	"github.com/jeranaias/ollama-chat/internal/models"
	"github.com/jeranaias/ollama-chat/internal/ollama"
	"github.com/jeranaias/ollama-chat/internal/openaicompat"
	"github.com/jeranaias/ollama-chat/internal/session"
	"github.com/jeranaias/ollama-chat/internal/storage"
)

// backend is a completion client that can also list models.
type backend interface {
	session.Completer
	models.Lister
}

// logMode selects where a command's logs go.
type logMode int

const (
	// logToFile is used while the terminal is owned by the TUI or the REPL.
	logToFile logMode = iota
	logToStderr
)

// services is everything a command needs, built from the configuration.
type services struct {
	cfg     *config.Config
	logger  *log.Logger
	backend backend
	kv      storage.KV
	chats   *storage.ChatStore
	store   *session.Store
	dir     *models.Directory
	closers []io.Closer
}

// loadConfig reads the configuration and applies the global flags.
func (app *App) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if app.ConfigPath != "" {
		cfg, err = config.LoadFromPath(app.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if app.BaseURL != "" {
		cfg.BaseURL = app.BaseURL
	}
	if app.Model != "" {
		cfg.DefaultModel = app.Model
	}
	if app.Backend != "" {
		cfg.Completion.Backend = app.Backend
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// open builds the services for a command. The caller must call close.
func (app *App) open(mode logMode) (*services, error) {
	cfg, err := app.loadConfig()
	if err != nil {
		return nil, err
	}

	opts := logging.Options{Level: cfg.Log.Level, Stderr: mode == logToStderr}
	if mode == logToFile {
		opts.File = cfg.Log.File
	}
	logger, logCloser, err := logging.New(opts)
	if err != nil {
		return nil, err
	}
	s := &services{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	kv, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Dir)
	if err != nil {
		s.close()
		return nil, fmt.Errorf("failed to open chat storage: %w", err)
	}
	s.kv = kv
	s.closers = append(s.closers, kv)

	s.backend = newBackend(cfg)
	s.chats = storage.NewChatStore(kv, logger)
	s.store = session.New(s.chats, s.backend,
		session.WithLogger(logger),
		session.WithDefaultModel(cfg.DefaultModel),
	)
	s.dir = models.NewDirectory(s.backend, logger)

	logger.Debug("services ready",
		"url", cfg.BaseURL,
		"backend", cfg.Completion.Backend,
		"storage", cfg.Storage.Backend,
		"dir", cfg.Storage.Dir,
	)
	return s, nil
}

// close releases storage and the log file in reverse order of opening.
func (s *services) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// newBackend creates the completion client selected by the configuration.
func newBackend(cfg *config.Config) backend {
	if cfg.Completion.Backend == config.BackendOpenAI {
		return openaicompat.NewClient(openaicompat.Config{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Completion.Timeout.Duration,
		})
	}
	return ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Completion.Timeout.Duration,
	})
}
