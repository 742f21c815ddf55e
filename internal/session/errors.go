// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "errors"

// User-visible error texts stored in State.Error.
const (
	CompletionErrorMessage = "Failed to get response from the model"
	ModelFetchErrorMessage = "Failed to fetch models"
)

var (
	// ErrEmptyMessage is returned by BeginSend for blank input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrRequestInFlight is returned by BeginSend while any chat is still
	// waiting for a reply.
	ErrRequestInFlight = errors.New("a request is already in flight")
)
