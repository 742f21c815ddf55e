// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package models holds the directory of models the endpoint offers.
package models

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Lister fetches the names of the available models, in server order.
type Lister interface {
	ModelNames(ctx context.Context) ([]string, error)
}

// Directory caches the model list fetched at startup.
//
// A Directory is fetched once; a failed fetch leaves the list empty and is
// not retried.
type Directory struct {
	lister Lister
	logger *log.Logger

	mu      sync.RWMutex
	names   []string
	fetched bool
	err     error
}

// NewDirectory creates a directory backed by lister. A nil logger discards output.
func NewDirectory(lister Lister, logger *log.Logger) *Directory {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Directory{lister: lister, logger: logger.WithPrefix("models")}
}

// Fetch requests the model list and stores it. On failure the stored list
// is emptied and the error returned.
func (d *Directory) Fetch(ctx context.Context) ([]string, error) {
	names, err := d.lister.ModelNames(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetched = true
	d.err = err
	if err != nil {
		d.names = nil
		d.logger.Warn("failed to fetch models", "err", err)
		return nil, err
	}
	d.names = append([]string(nil), names...)
	d.logger.Debug("fetched models", "count", len(names))
	return d.copyNames(), nil
}

// Names returns a copy of the fetched model names. It is empty before a
// successful Fetch.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.copyNames()
}

func (d *Directory) copyNames() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Default returns the first model, or "" when the list is empty.
func (d *Directory) Default() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.names) == 0 {
		return ""
	}
	return d.names[0]
}

// Contains reports whether name was in the fetched list.
func (d *Directory) Contains(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, n := range d.names {
		if n == name {
			return true
		}
	}
	return false
}

// Err returns the error from the last Fetch, if any.
func (d *Directory) Err() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.err
}

// Fetched reports whether Fetch has completed at least once.
func (d *Directory) Fetched() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.fetched
}

// Next returns the model after current in the list, wrapping around. When
// current is not listed the first model is returned; an empty list yields current.
func (d *Directory) Next(current string) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if len(d.names) == 0 {
		return current
	}
	for i, n := range d.names {
		if n == current {
			return d.names[(i+1)%len(d.names)]
		}
	}
	return d.names[0]
}
