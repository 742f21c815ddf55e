// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"

	"github.com/jeranaias/ollama-chat/internal/models"
)

// LoadModels fetches the model directory. When the list is non-empty the
// first model becomes the selected one. A failure sets the error text and
// leaves the selected model unchanged.
func (s *Store) LoadModels(ctx context.Context, dir *models.Directory) error {
	names, err := dir.Fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.models = []string{}
		s.errMsg = ModelFetchErrorMessage
		return err
	}

	s.models = names
	if len(names) > 0 {
		s.selectedModel = names[0]
	}
	return nil
}

// Models returns the model names from the last successful LoadModels.
func (s *Store) Models() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.models...)
}
