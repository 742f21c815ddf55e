// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling for the ollama-chat TUI.
//
// Colors are lipgloss.AdaptiveColor values so the same palette works on
// light and dark terminals. NewTheme detects the color profile with termenv;
// NewThemeWithProfile pins it, which keeps rendered output stable in tests.
//
// Usage:
//
//	theme := styles.NewTheme()
//	theme.SetSize(width, height)
//	banner := theme.ErrorBanner.Render("Failed to fetch models")
package styles
