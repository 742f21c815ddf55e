// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
//
// Only the two endpoints the chat client needs are implemented:
//
//   - GET  /api/tags  lists the locally installed models
//   - POST /api/chat  runs a single, non-streaming chat completion
//
// # Usage
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
//	    BaseURL: "http://localhost:11434",
//	})
//	names, err := client.ModelNames(ctx)
//	reply, err := client.Complete(ctx, "llama2", history)
//
// Requests are never retried. Failures are returned as *ClientError and can
// be classified with IsNotRunning, IsTimeout and IsModelNotFound.
package ollama
