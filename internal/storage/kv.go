// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
)

// KV is an opaque key-value store. Values are whole records: Set replaces
// the previous value for the key entirely.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(key string) (value []byte, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte) error

	// Close releases any resources held by the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ErrInvalidKey is returned for keys that are empty or contain characters
// other than letters, digits, '-', '_' and '.'.
var ErrInvalidKey = errors.New("invalid storage key")

var validKey = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func checkKey(key string) error {
	if !validKey.MatchString(key) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// Open creates the KV store for the named backend rooted at dir.
func Open(backend, dir string) (KV, error) {
	switch backend {
	case BackendFile, "":
		return NewFileKV(dir)
	case BackendSQLite:
		return NewSQLiteKV(filepath.Join(dir, "ollama-chat.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
