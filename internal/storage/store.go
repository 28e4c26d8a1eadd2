// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/ZeynTheCreator/ZurkAi/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrSessionNotFound is returned by Get for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
)

// =============================================================================
// SESSION STORE
// =============================================================================

// DefaultMaxSessions caps the session list; the oldest entries are
// pruned past it.
const DefaultMaxSessions = 100

// Store is the session repository over a KV blob store. The whole
// session list is one blob rewritten on every mutation; acceptable for
// small histories, and reads after writes are consistent within one
// process. Single-writer across processes is assumed.
//
// The mutex serializes each read-modify-write cycle. Callers mutate
// concurrently (the title goroutine races the next turn's append), and
// an unserialized cycle would persist a stale list, dropping messages.
type Store struct {
	mu          sync.Mutex
	kv          KV
	MaxSessions int
}

// NewStore creates a Store over the given KV backend.
func NewStore(kv KV) *Store {
	return &Store{kv: kv, MaxSessions: DefaultMaxSessions}
}

// Close closes the underlying backend.
func (s *Store) Close() error { return s.kv.Close() }

// =============================================================================
// SESSION LIST
// =============================================================================

// Sessions returns all sessions, most recently created first. A
// missing or corrupt blob yields an empty list, never an error.
func (s *Store) Sessions() []*model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadSessions()
}

// loadSessions reads and decodes the session blob. Callers hold s.mu.
func (s *Store) loadSessions() []*model.Session {
	data, ok, err := s.kv.Get(KeyChatHistory)
	if err != nil || !ok {
		return []*model.Session{}
	}
	var sessions []*model.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		// Corrupt history degrades to empty state.
		return []*model.Session{}
	}
	return sessions
}

func (s *Store) saveSessions(sessions []*model.Session) error {
	max := s.MaxSessions
	if max <= 0 {
		max = DefaultMaxSessions
	}
	if len(sessions) > max {
		sessions = sessions[:max]
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}
	if err := s.kv.Set(KeyChatHistory, data); err != nil {
		return fmt.Errorf("failed to persist sessions: %w", err)
	}
	return nil
}

// Create inserts the session at the front of the list and persists.
// It does not make the session active.
func (s *Store) Create(sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := append([]*model.Session{sess}, s.loadSessions()...)
	return s.saveSessions(sessions)
}

// Get returns the session with the given id, or ErrSessionNotFound.
func (s *Store) Get(id string) (*model.Session, error) {
	for _, sess := range s.Sessions() {
		if sess.ID == id {
			return sess, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
}

// Update applies mutate to the stored session with the given id and
// persists the list. A missing id is a no-op, not an error. The reload,
// mutate, and save happen under the store lock as one cycle, so a
// concurrent Update never persists a list missing this one's change.
func (s *Store) Update(id string, mutate func(*model.Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := s.loadSessions()
	for _, sess := range sessions {
		if sess.ID == id {
			mutate(sess)
			return s.saveSessions(sessions)
		}
	}
	return nil
}

// AppendMessage appends a message to the stored session. Missing id is
// a no-op.
func (s *Store) AppendMessage(id string, msg *model.Message) error {
	return s.Update(id, func(sess *model.Session) {
		sess.Append(msg)
	})
}

// Delete removes the session from the list. A missing id is a no-op.
// When the deleted session was active, the most recent remaining
// session is promoted to active; with none remaining the active id is
// cleared and the caller is expected to create a fresh default session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sessions := s.loadSessions()
	remaining := make([]*model.Session, 0, len(sessions))
	found := false
	for _, sess := range sessions {
		if sess.ID == id {
			found = true
			continue
		}
		remaining = append(remaining, sess)
	}
	if !found {
		return nil
	}
	if err := s.saveSessions(remaining); err != nil {
		return err
	}

	if s.ActiveID() == id {
		if len(remaining) > 0 {
			return s.SetActiveID(remaining[0].ID)
		}
		return s.kv.Delete(KeyActiveChatID)
	}
	return nil
}

// =============================================================================
// ACTIVE SESSION & PERSONA PREFERENCES
// =============================================================================

// ActiveID returns the persisted active session id, or "".
func (s *Store) ActiveID() string {
	data, ok, err := s.kv.Get(KeyActiveChatID)
	if err != nil || !ok {
		return ""
	}
	return string(data)
}

// SetActiveID persists the active session id.
func (s *Store) SetActiveID(id string) error {
	if err := s.kv.Set(KeyActiveChatID, []byte(id)); err != nil {
		return fmt.Errorf("failed to persist active session id: %w", err)
	}
	return nil
}

// CustomPersona returns the saved custom persona text, or "".
func (s *Store) CustomPersona() string {
	data, ok, err := s.kv.Get(KeyCustomPersona)
	if err != nil || !ok {
		return ""
	}
	return string(data)
}

// SetCustomPersona persists the custom persona text.
func (s *Store) SetCustomPersona(text string) error {
	if err := s.kv.Set(KeyCustomPersona, []byte(text)); err != nil {
		return fmt.Errorf("failed to persist custom persona: %w", err)
	}
	return nil
}
