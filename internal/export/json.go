// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"

	"github.com/jeranaias/ollama-chat/internal/model"
)

// JSONExporter exports a chat in the same layout the chat list is stored
// in, so an export can be read back with encoding/json into model.Chat.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export converts a chat to indented JSON.
func (e *JSONExporter) Export(chat model.Chat) ([]byte, error) {
	chat = chat.Clone()
	data, err := json.MarshalIndent(chat, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
