// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/ollama-chat/internal/model"
)

// ChatsKey is the fixed key the chat list is stored under.
const ChatsKey = "chats"

// ChatStore persists the ordered chat list as one record.
type ChatStore struct {
	kv     KV
	key    string
	logger *log.Logger
}

// NewChatStore creates a chat store on top of kv. A nil logger discards output.
func NewChatStore(kv KV, logger *log.Logger) *ChatStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ChatStore{
		kv:     kv,
		key:    ChatsKey,
		logger: logger.WithPrefix("storage"),
	}
}

// Load returns the persisted chats in stored order.
//
// Absent data yields an empty list. Unreadable or corrupt data is logged and
// also yields an empty list; the bad record is left in place until the next
// Save overwrites it.
func (s *ChatStore) Load() []model.Chat {
	data, ok, err := s.kv.Get(s.key)
	if err != nil {
		s.logger.Warn("failed to read chats, starting empty", "err", err)
		return []model.Chat{}
	}
	if !ok || len(data) == 0 {
		return []model.Chat{}
	}

	var chats []model.Chat
	if err := json.Unmarshal(data, &chats); err != nil {
		s.logger.Warn("stored chats are corrupt, starting empty", "err", err, "bytes", len(data))
		return []model.Chat{}
	}

	for i := range chats {
		if chats[i].Messages == nil {
			chats[i].Messages = []model.Message{}
		}
	}
	if chats == nil {
		chats = []model.Chat{}
	}

	s.logger.Debug("loaded chats", "count", len(chats))
	return chats
}

// Save overwrites the persisted record with chats.
func (s *ChatStore) Save(chats []model.Chat) error {
	if chats == nil {
		chats = []model.Chat{}
	}
	data, err := json.Marshal(chats)
	if err != nil {
		return fmt.Errorf("failed to encode chats: %w", err)
	}
	if err := s.kv.Set(s.key, data); err != nil {
		return fmt.Errorf("failed to save chats: %w", err)
	}
	s.logger.Debug("saved chats", "count", len(chats), "bytes", len(data))
	return nil
}
