// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"

	"github.com/jeranaias/ollama-chat/internal/model"
)

// Request is an outstanding completion, captured when the message was sent.
type Request struct {
	// Seq identifies the request among all requests of the store.
	Seq uint64

	// ChatID is the chat the message was sent to.
	ChatID string

	// Model is the model selected at send time.
	Model string

	// History is the chat history including the new user message.
	History []model.Message

	// FirstMessage is true when the chat was empty before this message.
	FirstMessage bool
}

// Outcome is the result of a completion.
type Outcome struct {
	Reply string
	Err   error
}

// BeginSend appends a user message to the active chat, creating a chat
// first if none is active, and persists it. The returned Request must be
// passed to Exchange and then FinishSend.
func (s *Store) BeginSend(text string) (*Request, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.inFlight) > 0 {
		return nil, ErrRequestInFlight
	}
	if s.activeID == "" {
		s.createLocked()
	}

	id := s.activeID
	i := model.IndexOf(s.chats, id)
	if i < 0 {
		// The active chat vanished from the list; start over with a fresh one.
		s.logger.Warn("active chat missing from list, creating a new one", "chat", id)
		s.createLocked()
		id = s.activeID
		i = 0
	}

	// Captured before the append; the title is derived only from a chat's first message.
	first := len(s.activeMessages) == 0

	history := model.AppendMessage(s.activeMessages, model.NewUserMessage(text))
	s.activeMessages = history
	s.errMsg = ""

	s.chats[i].Messages = model.CloneMessages(history)
	if first {
		s.chats[i].Title = model.DeriveTitle(text)
	}

	s.seq++
	s.inFlight[id] = s.seq
	s.persistLocked()

	s.logger.Debug("message sent", "chat", id, "model", s.selectedModel, "messages", len(history))
	return &Request{
		Seq:          s.seq,
		ChatID:       id,
		Model:        s.selectedModel,
		History:      model.CloneMessages(history),
		FirstMessage: first,
	}, nil
}

// Exchange calls the completer for req. It does not touch the store's state
// and may run on any goroutine.
func (s *Store) Exchange(ctx context.Context, req *Request) Outcome {
	reply, err := s.completer.Complete(ctx, req.Model, model.CloneMessages(req.History))
	return Outcome{Reply: reply, Err: err}
}

// FinishSend reconciles the outcome of req.
//
// On success the reply is appended to the chat the request was sent to
// (matched by ID) and persisted. On failure nothing is appended and the
// user's message stays. Active messages, loading and error are only updated
// when that chat is still active.
func (s *Store) FinishSend(req *Request, out Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq, ok := s.inFlight[req.ChatID]; ok && seq == req.Seq {
		delete(s.inFlight, req.ChatID)
	}

	i := model.IndexOf(s.chats, req.ChatID)
	active := s.activeID == req.ChatID

	if out.Err != nil {
		s.logger.Warn("completion failed", "chat", req.ChatID, "model", req.Model, "err", out.Err)
		if active {
			s.errMsg = CompletionErrorMessage
		}
		return
	}

	final := model.AppendMessage(req.History, model.NewAssistantMessage(out.Reply))

	if i < 0 {
		s.logger.Info("chat removed before its reply arrived, dropping reply", "chat", req.ChatID)
		return
	}
	s.chats[i].Messages = model.CloneMessages(final)
	s.persistLocked()

	if !active {
		s.logger.Debug("reply stored for inactive chat", "chat", req.ChatID)
		return
	}
	s.activeMessages = final
	s.logger.Debug("reply received", "chat", req.ChatID, "messages", len(final))
}

// SendMessage sends text and waits for the reply. Completion failures are
// not returned; they are reported through State().Error like in the other
// paths. The error is non-nil only when the send was rejected.
func (s *Store) SendMessage(ctx context.Context, text string) error {
	req, err := s.BeginSend(text)
	if err != nil {
		return err
	}
	s.FinishSend(req, s.Exchange(ctx, req))
	return nil
}
