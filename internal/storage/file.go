// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jeranaias/ollama-chat/internal/util"
)

// FileKV stores each key as <dir>/<key>.json.
type FileKV struct {
	// Dir is the directory holding one file per key.
	Dir string
}

// NewFileKV creates a file-backed store, creating dir if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileKV{Dir: dir}, nil
}

// Get reads the file for key.
func (s *FileKV) Get(key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Set atomically replaces the file for key.
func (s *FileKV) Set(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	return util.AtomicWriteFile(s.path(key), value, 0600)
}

// Close is a no-op for files.
func (s *FileKV) Close() error {
	return nil
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}
