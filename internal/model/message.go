// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// SENDER
// =============================================================================

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// DisplayName returns the label used in transcripts and exports.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "User"
	case SenderAssistant:
		return "ZurkAI"
	default:
		return string(s)
	}
}

// =============================================================================
// GROUNDING REFERENCES
// =============================================================================

// GroundingReference is a citation attached to an assistant message
// produced under the web-search mode.
type GroundingReference struct {
	URI   string `json:"uri"`
	Title string `json:"title,omitempty"`
}

// DedupeReferences removes duplicate references by URI, keeping the
// first occurrence of each and preserving order. References without a
// URI are dropped.
func DedupeReferences(refs []GroundingReference) []GroundingReference {
	if len(refs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(refs))
	out := make([]GroundingReference, 0, len(refs))
	for _, ref := range refs {
		if ref.URI == "" {
			continue
		}
		if _, ok := seen[ref.URI]; ok {
			continue
		}
		seen[ref.URI] = struct{}{}
		out = append(out, ref)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single chat message. Every message carries at least one
// of Text or ImageURL; the constructors enforce this.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// References holds deduplicated citations for search-grounded
	// replies.
	References []GroundingReference `json:"groundingReferences,omitempty"`

	// Streaming state. Only assistant messages stream; the builder
	// accumulates increments until FinalizeStream moves them to Text.
	IsStreaming   bool `json:"-"`
	streamContent strings.Builder
}

// NewUserMessage creates a user message. Either text or imageURL may be
// empty, but not both.
func NewUserMessage(text, imageURL string) (*Message, error) {
	if text == "" && imageURL == "" {
		return nil, fmt.Errorf("message requires text or an image")
	}
	return &Message{
		ID:        generateMessageID(),
		Sender:    SenderUser,
		Text:      text,
		ImageURL:  imageURL,
		Timestamp: time.Now(),
	}, nil
}

// NewAssistantMessage creates a finalized assistant message.
func NewAssistantMessage(text string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Sender:    SenderAssistant,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewImageMessage creates an assistant message carrying a generated
// image alongside its caption.
func NewImageMessage(text, imageURL string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Sender:    SenderAssistant,
		Text:      text,
		ImageURL:  imageURL,
		Timestamp: time.Now(),
	}
}

// NewStreamingMessage creates an assistant message that will receive
// streamed increments via AppendChunk.
func NewStreamingMessage() *Message {
	return &Message{
		ID:          generateMessageID(),
		Sender:      SenderAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// AppendChunk adds a streamed increment. No-op once finalized.
func (m *Message) AppendChunk(chunk string) {
	if !m.IsStreaming {
		return
	}
	m.streamContent.WriteString(chunk)
}

// FinalizeStream ends streaming, moving accumulated content into Text.
func (m *Message) FinalizeStream() {
	if !m.IsStreaming {
		return
	}
	m.Text = m.streamContent.String()
	m.IsStreaming = false
	m.streamContent.Reset()
}

// SetText replaces the message text. Used when a streamed reply is
// rewritten before storage (news-mode image directives are stripped).
func (m *Message) SetText(text string) {
	m.Text = text
	if m.IsStreaming {
		m.IsStreaming = false
		m.streamContent.Reset()
	}
}

// DisplayText returns the text to render right now: the accumulated
// stream while streaming, the final text otherwise.
func (m *Message) DisplayText() string {
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Text
}

// IsEmpty reports whether the message carries no content at all.
func (m *Message) IsEmpty() bool {
	return m.DisplayText() == "" && m.ImageURL == ""
}

// Clone returns a deep copy of a finalized message.
func (m *Message) Clone() *Message {
	c := &Message{
		ID:        m.ID,
		Sender:    m.Sender,
		Text:      m.Text,
		ImageURL:  m.ImageURL,
		Timestamp: m.Timestamp,
	}
	if len(m.References) > 0 {
		c.References = make([]GroundingReference, len(m.References))
		copy(c.References, m.References)
	}
	return c
}

// generateMessageID returns a unique message ID like "msg_a1b2c3d4e5f6a7b8".
func generateMessageID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("msg_%d", time.Now().UnixNano())
	}
	return "msg_" + hex.EncodeToString(b)
}
