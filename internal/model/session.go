// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// MODE
// =============================================================================

// Mode selects the persona or capability a session talks to.
type Mode string

const (
	ModeZurk      Mode = "zurk"
	ModeThinker   Mode = "thinker"
	ModeCoder     Mode = "coder"
	ModeNews      Mode = "news"
	ModeFitness   Mode = "fitness"
	ModeStudy     Mode = "study"
	ModeCreative  Mode = "creative"
	ModeSimulator Mode = "simulator"
	ModeEmotional Mode = "emotional"
	ModeGod       Mode = "god"
	ModeDeveloper Mode = "zurk-developer"
	ModeCustom    Mode = "custom"
	ModeWebSearch Mode = "web-search"
)

// Modes lists every mode in menu order.
var Modes = []Mode{
	ModeZurk, ModeThinker, ModeCoder, ModeNews, ModeFitness, ModeStudy,
	ModeCreative, ModeSimulator, ModeEmotional, ModeGod, ModeDeveloper,
	ModeCustom, ModeWebSearch,
}

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// =============================================================================
// SESSION
// =============================================================================

// TitlePlaceholder is the title every session starts with. The async
// auto-title only ever replaces this exact value.
const TitlePlaceholder = "New Chat"

// DocumentContext is extracted text from an uploaded document. Once
// attached it is injected into every user turn until explicitly
// cleared.
type DocumentContext struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// Session is one persisted conversation.
type Session struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Mode     Mode       `json:"mode"`
	Messages []*Message `json:"messages"`

	// CustomPersona is the free-text system instruction, meaningful
	// only when Mode is ModeCustom.
	CustomPersona string `json:"customPersona,omitempty"`

	// Document is the attached document context, if any.
	Document *DocumentContext `json:"documentContext,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewSession creates an empty session with the placeholder title.
func NewSession(mode Mode, customPersona string) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Title:     TitlePlaceholder,
		Mode:      mode,
		Messages:  make([]*Message, 0),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mode == ModeCustom {
		s.CustomPersona = customPersona
	}
	return s
}

// Append adds a message to the end of the history.
func (s *Session) Append(msg *Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
}

// FindMessage returns the index of the message with the given ID, or -1.
func (s *Session) FindMessage(id string) int {
	for i, m := range s.Messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// Fork creates a new session seeded with deep copies of the messages
// strictly before the message with the given ID. The new session keeps
// the mode and persona, gets a fresh ID, and is titled as a derivative
// of the original. The source session is never mutated.
//
// Returns nil if the message is not found.
func (s *Session) Fork(messageID string) *Session {
	idx := s.FindMessage(messageID)
	if idx < 0 {
		return nil
	}
	now := time.Now()
	fork := &Session{
		ID:            uuid.NewString(),
		Title:         s.Title + " (edited)",
		Mode:          s.Mode,
		CustomPersona: s.CustomPersona,
		Messages:      make([]*Message, 0, idx),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if s.Document != nil {
		doc := *s.Document
		fork.Document = &doc
	}
	for _, m := range s.Messages[:idx] {
		fork.Messages = append(fork.Messages, m.Clone())
	}
	return fork
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	c.Messages = make([]*Message, 0, len(s.Messages))
	for _, m := range s.Messages {
		c.Messages = append(c.Messages, m.Clone())
	}
	if s.Document != nil {
		doc := *s.Document
		c.Document = &doc
	}
	return &c
}
