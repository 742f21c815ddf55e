// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the ollama-chat configuration.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command line flags (applied by the cli package)
//   - Environment variables (OLLAMA_CHAT_*), including a .env file in the
//     working directory
//   - ~/.ollama-chat/config.toml
//   - Built-in defaults
//
// # Example
//
//	base_url = "http://localhost:11434"
//	default_model = "llama2"
//
//	[completion]
//	backend = "ollama"
//	timeout = "5m"
//
//	[storage]
//	backend = "sqlite"
//
//	[log]
//	level = "debug"
package config
