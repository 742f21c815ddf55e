// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	names []string
	err   error
	calls int
}

func (f *fakeLister) ModelNames(ctx context.Context) ([]string, error) {
	f.calls++
	return f.names, f.err
}

func TestDirectory_Fetch(t *testing.T) {
	lister := &fakeLister{names: []string{"llama2", "mistral", "phi"}}
	d := NewDirectory(lister, nil)

	assert.False(t, d.Fetched())
	assert.Empty(t, d.Names())
	assert.Equal(t, "", d.Default())

	names, err := d.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"llama2", "mistral", "phi"}, names)
	assert.Equal(t, "llama2", d.Default())
	assert.True(t, d.Contains("phi"))
	assert.False(t, d.Contains("gpt"))
	assert.True(t, d.Fetched())
	assert.NoError(t, d.Err())
}

func TestDirectory_FetchFailure(t *testing.T) {
	lister := &fakeLister{err: errors.New("connection refused")}
	d := NewDirectory(lister, nil)

	names, err := d.Fetch(context.Background())
	require.Error(t, err)
	assert.Nil(t, names)
	assert.Empty(t, d.Names())
	assert.Equal(t, "", d.Default())
	assert.Error(t, d.Err())
	assert.Equal(t, 1, lister.calls, "fetch must not retry")
}

func TestDirectory_NamesIsACopy(t *testing.T) {
	d := NewDirectory(&fakeLister{names: []string{"a", "b"}}, nil)
	_, err := d.Fetch(context.Background())
	require.NoError(t, err)

	names := d.Names()
	names[0] = "changed"
	assert.Equal(t, "a", d.Default())
}

func TestDirectory_Next(t *testing.T) {
	d := NewDirectory(&fakeLister{names: []string{"a", "b", "c"}}, nil)
	assert.Equal(t, "x", d.Next("x"), "empty list keeps current")

	_, err := d.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "b", d.Next("a"))
	assert.Equal(t, "a", d.Next("c"))
	assert.Equal(t, "a", d.Next("unknown"))
}
