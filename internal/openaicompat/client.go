// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package openaicompat talks to Ollama through its OpenAI-compatible /v1 API.
//
// It is an alternative completion backend to package ollama with the same
// contract: one request per call, no retries, no conversation state, and
// failures reported as *ollama.ClientError.
package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jeranaias/ollama-chat/internal/model"
	"github.com/jeranaias/ollama-chat/internal/ollama"
)

// placeholderKey is sent as the bearer token; Ollama ignores it but the
// OpenAI client requires one.
const placeholderKey = "ollama"

// Config holds configuration for the OpenAI-compatible client.
type Config struct {
	// BaseURL is the Ollama root URL; "/v1" is appended.
	BaseURL string

	// APIKey is optional for a local Ollama.
	APIKey string

	// Timeout bounds a whole request. Zero means no client-side timeout.
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client wraps a go-openai client pointed at Ollama.
type Client struct {
	api     *openai.Client
	baseURL string
}

// NewClient creates a client for the given configuration.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = ollama.DefaultBaseURL
	}
	key := cfg.APIKey
	if key == "" {
		key = placeholderKey
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	apiCfg := openai.DefaultConfig(key)
	apiCfg.BaseURL = base + "/v1"
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	} else {
		apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		baseURL: base,
	}
}

// BaseURL returns the Ollama root URL this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Complete sends the history to the model and returns the reply text.
func (c *Client) Complete(ctx context.Context, modelName string, history []model.Message) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, len(history))
	for i, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == model.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		msgs[i] = openai.ChatCompletionMessage{Role: role, Content: m.Content}
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    modelName,
		Messages: msgs,
		Stream:   false,
	})
	if err != nil {
		return "", classify(err, "chat request failed")
	}
	if len(resp.Choices) == 0 {
		return "", &ollama.ClientError{Type: ollama.ErrTypeInvalidResponse, Message: "response has no choices"}
	}

	msg := resp.Choices[0].Message
	if msg.Content == "" && len(msg.ToolCalls) == 0 {
		return "", &ollama.ClientError{Type: ollama.ErrTypeInvalidResponse, Message: "response has no content"}
	}

	return msg.Content, nil
}

// ModelNames lists the installed models in the order the server reports them.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, classify(err, "failed to list models")
	}
	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

// classify maps go-openai errors onto the shared client error types.
func classify(err error, msg string) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusNotFound {
			return &ollama.ClientError{Type: ollama.ErrTypeModelNotFound, Message: apiErr.Message, Cause: err}
		}
		return &ollama.ClientError{Type: ollama.ErrTypeInvalidResponse, Message: msg, Cause: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusNotFound {
			return &ollama.ClientError{Type: ollama.ErrTypeModelNotFound, Message: msg, Cause: err}
		}
		return &ollama.ClientError{Type: ollama.ErrTypeInvalidResponse, Message: msg, Cause: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &ollama.ClientError{Type: ollama.ErrTypeTimeout, Message: "request timed out", Cause: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ollama.ClientError{Type: ollama.ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}

	return &ollama.ClientError{Type: ollama.ErrTypeNotRunning, Message: "Ollama is not running", Cause: err}
}
