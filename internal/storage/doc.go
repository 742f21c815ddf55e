// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides chat persistence.
//
// Two layers are involved:
//
//   - KV is an opaque key-value store holding whole records (FileKV writes
//     one file per key, SQLiteKV one row per key).
//   - ChatStore keeps the complete, ordered list of chats as a single JSON
//     record under ChatsKey and always reads and writes it as a whole.
//
// Loading is fail-soft: a missing, unreadable or corrupt record yields an
// empty list and a logged warning instead of an error.
package storage
