// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jeranaias/ollama-chat/internal/model"
)

// DefaultModel is selected until the model directory reports something else.
const DefaultModel = "llama2"

// =============================================================================
// COLLABORATORS
// =============================================================================

// ChatRepository is the durable copy of the chat list. It is read once at
// construction and overwritten on every change.
type ChatRepository interface {
	Load() []model.Chat
	Save(chats []model.Chat) error
}

// Completer sends a chat history to a model and returns the reply text.
// Implementations must not retry and must not keep conversation state.
type Completer interface {
	Complete(ctx context.Context, model string, history []model.Message) (string, error)
}

// =============================================================================
// STATE
// =============================================================================

// State is a snapshot of the session for rendering. It shares no memory
// with the Store.
type State struct {
	// ActiveMessages is the history shown for the active chat.
	ActiveMessages []model.Message

	// IsLoading is true while the active chat waits for a reply.
	IsLoading bool

	// Busy is true while any request is outstanding, whichever chat it was
	// sent from. No new message can be sent while Busy.
	Busy bool

	// Error is the last user-visible error, or "" for none.
	Error string

	// SelectedModel is the model new requests are sent to.
	SelectedModel string

	// Chats lists every chat, most recently created first.
	Chats []model.Chat

	// ActiveChatID is the active chat, or "" for none.
	ActiveChatID string
}

// HasActive reports whether a chat is active.
func (s State) HasActive() bool {
	return s.ActiveChatID != ""
}

// ActiveChat returns the active chat, if any.
func (s State) ActiveChat() (model.Chat, bool) {
	if i := model.IndexOf(s.Chats, s.ActiveChatID); s.ActiveChatID != "" && i >= 0 {
		return s.Chats[i], true
	}
	return model.Chat{}, false
}

// =============================================================================
// STORE
// =============================================================================

// Store owns the session state. All methods are safe for concurrent use; no
// lock is held while a completion or model fetch is running.
type Store struct {
	repo      ChatRepository
	completer Completer
	logger    *log.Logger
	now       func() time.Time
	newID     func() string

	mu             sync.Mutex
	chats          []model.Chat
	activeID       string
	activeMessages []model.Message
	errMsg         string
	selectedModel  string
	models         []string

	// inFlight maps a chat ID to the sequence number of its outstanding request.
	inFlight map[string]uint64
	seq      uint64
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for chat creation times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides how chat IDs are generated.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultModel sets the model selected before the directory is loaded.
func WithDefaultModel(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.selectedModel = name
		}
	}
}

// New creates a store, loading the persisted chats from repo once.
func New(repo ChatRepository, completer Completer, opts ...Option) *Store {
	s := &Store{
		repo:          repo,
		completer:     completer,
		logger:        log.New(io.Discard),
		now:           time.Now,
		newID:         uuid.NewString,
		selectedModel: DefaultModel,
		inFlight:      make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithPrefix("session")

	s.chats = repo.Load()
	if s.chats == nil {
		s.chats = []model.Chat{}
	}
	s.activeMessages = []model.Message{}
	s.logger.Debug("session loaded", "chats", len(s.chats))
	return s
}

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, loading := s.inFlight[s.activeID]
	return State{
		ActiveMessages: model.CloneMessages(s.activeMessages),
		IsLoading:      s.activeID != "" && loading,
		Busy:           len(s.inFlight) > 0,
		Error:          s.errMsg,
		SelectedModel:  s.selectedModel,
		Chats:          model.CloneChats(s.chats),
		ActiveChatID:   s.activeID,
	}
}

// IsLoading reports whether the active chat is waiting for a reply.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, loading := s.inFlight[s.activeID]
	return s.activeID != "" && loading
}

// Busy reports whether any request is outstanding.
func (s *Store) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight) > 0
}

// PendingRequests returns the number of outstanding requests across all chats.
func (s *Store) PendingRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

// =============================================================================
// CHAT LIFECYCLE
// =============================================================================

// CreateConversation starts a new empty chat, puts it first in the list and
// makes it active.
func (s *Store) CreateConversation() model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.createLocked()
	s.persistLocked()
	return chat.Clone()
}

// createLocked is the NoActiveChat -> HasActiveChat transition. It does not
// persist; callers do once their whole operation is applied.
func (s *Store) createLocked() model.Chat {
	chat := model.NewChat(s.uniqueIDLocked(), s.now())

	s.chats = append([]model.Chat{chat}, s.chats...)
	s.activeID = chat.ID
	s.activeMessages = []model.Message{}

	s.logger.Debug("created chat", "chat", chat.ID)
	return chat
}

// uniqueIDLocked draws IDs until one is not used by any stored chat.
func (s *Store) uniqueIDLocked() string {
	for {
		id := s.newID()
		if id != "" && model.IndexOf(s.chats, id) < 0 {
			return id
		}
		s.logger.Warn("generated chat ID already in use, retrying", "chat", id)
	}
}

// SelectConversation makes the chat with the given ID active and shows its
// stored messages. Unknown IDs are ignored; the return value reports whether
// the selection happened.
func (s *Store) SelectConversation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := model.IndexOf(s.chats, id)
	if id == "" || i < 0 {
		s.logger.Debug("ignoring selection of unknown chat", "chat", id)
		return false
	}

	s.activeID = id
	s.activeMessages = model.CloneMessages(s.chats[i].Messages)
	return true
}

// ClearActiveConversation deletes the active chat and leaves no chat active.
// It does nothing when no chat is active. A request still outstanding for the
// deleted chat keeps the store busy until its reply arrives and is discarded.
func (s *Store) ClearActiveConversation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.activeID == "" {
		return false
	}

	id := s.activeID
	if i := model.IndexOf(s.chats, id); i >= 0 {
		s.chats = append(s.chats[:i:i], s.chats[i+1:]...)
	}

	s.activeID = ""
	s.activeMessages = []model.Message{}
	s.errMsg = ""
	s.persistLocked()

	s.logger.Debug("cleared chat", "chat", id)
	return true
}

// =============================================================================
// MODELS
// =============================================================================

// SetModel selects the model for subsequent requests. The name is not
// checked against the directory.
func (s *Store) SetModel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedModel = name
}

// SelectedModel returns the model requests are sent to.
func (s *Store) SelectedModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedModel
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persistLocked writes the chat list through to the repository. Failures
// are logged; the in-memory state stays authoritative.
func (s *Store) persistLocked() {
	if err := s.repo.Save(model.CloneChats(s.chats)); err != nil {
		s.logger.Error("failed to persist chats", "err", err, "chats", len(s.chats))
	}
}
