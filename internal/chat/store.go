// Package chat holds the conversation state: an ordered, append-only list of
// user and model turns persisted under a fixed slot, plus the send
// orchestration that gates calls to the generation service.
package chat

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"souschef/internal/storage"
)

// Message is one conversation turn. Messages are never edited or removed
// individually; the only destructive operation is a whole-list Clear.
type Message struct {
	Text   string `json:"text"`
	IsUser bool   `json:"isUser"`
}

// Store is the conversation store. Every mutation writes the full serialized
// sequence back to the chatHistory slot. Mutations arrive from one logical
// writer, but the TUI reads from its own goroutine while a send is in
// flight, hence the lock.
type Store struct {
	mu       sync.RWMutex
	backend  storage.Backend
	logger   *zap.Logger
	messages []Message
}

// NewStore creates a conversation store hydrated from the backend. A missing
// or unreadable slot yields an empty conversation.
func NewStore(backend storage.Backend, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{backend: backend, logger: logger}

	data, err := backend.Load(storage.SlotChatHistory)
	if err == nil {
		if err := json.Unmarshal(data, &s.messages); err != nil {
			logger.Warn("discarding unreadable chat history", zap.Error(err))
			s.messages = nil
		}
	} else if err != storage.ErrNotFound {
		logger.Warn("loading chat history", zap.Error(err))
	}

	return s
}

// Append adds a message to the end of the conversation and persists the new
// state. Append never fails from the caller's point of view: a persistence
// error is logged and the in-memory state is kept.
func (s *Store) Append(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.persistLocked()
}

// Clear resets the conversation to empty and persists. Irreversible.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.persistLocked()
}

// All returns a copy of the current ordered sequence.
func (s *Store) All() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of turns.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *Store) persistLocked() {
	data, err := json.Marshal(s.messages)
	if err != nil {
		s.logger.Error("marshaling chat history", zap.Error(err))
		return
	}
	if err := s.backend.Save(storage.SlotChatHistory, data); err != nil {
		s.logger.Error("persisting chat history", zap.Error(err))
	}
}
