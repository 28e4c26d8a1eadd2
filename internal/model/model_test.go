// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewUserMessage(t *testing.T) {
	msg, err := NewUserMessage("hello", "")
	if err != nil {
		t.Fatalf("NewUserMessage failed: %v", err)
	}
	if !strings.HasPrefix(msg.ID, "msg_") {
		t.Errorf("ID = %q, want msg_ prefix", msg.ID)
	}
	if msg.Sender != SenderUser {
		t.Errorf("Sender = %q, want user", msg.Sender)
	}
}

func TestNewUserMessage_RequiresContent(t *testing.T) {
	if _, err := NewUserMessage("", ""); err == nil {
		t.Error("expected error for empty message")
	}
	if _, err := NewUserMessage("", "data:image/jpeg;base64,xx"); err != nil {
		t.Errorf("image-only message should be valid: %v", err)
	}
}

func TestMessage_Streaming(t *testing.T) {
	msg := NewStreamingMessage()
	msg.AppendChunk("Hello")
	msg.AppendChunk(", world")

	if got := msg.DisplayText(); got != "Hello, world" {
		t.Errorf("DisplayText during stream = %q", got)
	}
	if msg.Text != "" {
		t.Errorf("Text should be empty before finalize, got %q", msg.Text)
	}

	msg.FinalizeStream()
	if msg.Text != "Hello, world" {
		t.Errorf("Text after finalize = %q", msg.Text)
	}
	if msg.IsStreaming {
		t.Error("IsStreaming should be false after finalize")
	}

	// Further chunks are ignored once finalized.
	msg.AppendChunk("extra")
	if msg.Text != "Hello, world" {
		t.Errorf("Text mutated after finalize: %q", msg.Text)
	}
}

func TestDedupeReferences(t *testing.T) {
	refs := []GroundingReference{
		{URI: "https://a.example", Title: "A"},
		{URI: "https://b.example", Title: "B"},
		{URI: "https://a.example", Title: "A again"},
		{URI: "https://c.example", Title: "C"},
		{URI: "", Title: "no uri"},
	}
	got := DedupeReferences(refs)
	want := []string{"https://a.example", "https://b.example", "https://c.example"}
	if len(got) != len(want) {
		t.Fatalf("got %d refs, want %d", len(got), len(want))
	}
	for i, uri := range want {
		if got[i].URI != uri {
			t.Errorf("ref[%d].URI = %q, want %q", i, got[i].URI, uri)
		}
	}
	// First occurrence wins, including its title.
	if got[0].Title != "A" {
		t.Errorf("ref[0].Title = %q, want %q", got[0].Title, "A")
	}
}

func TestMessage_JSONRoundTrip(t *testing.T) {
	msg := NewImageMessage("Image for: a red fox", "data:image/jpeg;base64,abcd")
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded Message
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded.ImageURL != msg.ImageURL || decoded.Text != msg.Text {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

// =============================================================================
// SESSION TESTS
// =============================================================================

func TestNewSession(t *testing.T) {
	s := NewSession(ModeZurk, "")
	if s.Title != TitlePlaceholder {
		t.Errorf("Title = %q, want %q", s.Title, TitlePlaceholder)
	}
	if len(s.Messages) != 0 {
		t.Errorf("new session should have no messages, got %d", len(s.Messages))
	}
	if s.ID == "" {
		t.Error("expected non-empty ID")
	}
}

func TestNewSession_CustomPersona(t *testing.T) {
	s := NewSession(ModeCustom, "You are a pirate.")
	if s.CustomPersona != "You are a pirate." {
		t.Errorf("CustomPersona = %q", s.CustomPersona)
	}

	// Persona is only meaningful for custom mode.
	s2 := NewSession(ModeCoder, "ignored")
	if s2.CustomPersona != "" {
		t.Errorf("CustomPersona on non-custom mode = %q, want empty", s2.CustomPersona)
	}
}

func TestSession_Fork(t *testing.T) {
	s := NewSession(ModeZurk, "")
	u1, _ := NewUserMessage("first", "")
	a1 := NewAssistantMessage("reply one")
	u2, _ := NewUserMessage("second", "")
	a2 := NewAssistantMessage("reply two")
	s.Append(u1)
	s.Append(a1)
	s.Append(u2)
	s.Append(a2)
	s.Title = "My Chat"

	fork := s.Fork(u2.ID)
	if fork == nil {
		t.Fatal("Fork returned nil for existing message")
	}
	if fork.Title != "My Chat (edited)" {
		t.Errorf("fork title = %q", fork.Title)
	}
	if fork.ID == s.ID {
		t.Error("fork must have a fresh ID")
	}
	if len(fork.Messages) != 2 {
		t.Fatalf("fork has %d messages, want 2", len(fork.Messages))
	}

	// The source session is untouched.
	if len(s.Messages) != 4 {
		t.Errorf("source session mutated: %d messages", len(s.Messages))
	}

	// Deep copy: mutating the fork must not leak into the source.
	fork.Messages[0].Text = "tampered"
	if s.Messages[0].Text != "first" {
		t.Error("fork shares message storage with source")
	}
}

func TestSession_ForkMissingMessage(t *testing.T) {
	s := NewSession(ModeZurk, "")
	if fork := s.Fork("msg_nope"); fork != nil {
		t.Error("Fork of missing message should return nil")
	}
}

func TestMode_IsValid(t *testing.T) {
	for _, m := range Modes {
		if !m.IsValid() {
			t.Errorf("mode %q should be valid", m)
		}
	}
	if Mode("pirate").IsValid() {
		t.Error("unknown mode reported valid")
	}
}
