// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file defines the Bubble Tea message types used by the chat
// view. Engine-originated messages mirror the engine.Sink callbacks;
// the rest are internal to the view loop.
package chat

import (
	"time"

	"github.com/ZeynTheCreator/ZurkAi/internal/engine"
	"github.com/ZeynTheCreator/ZurkAi/internal/model"
)

// =============================================================================
// ENGINE EVENT MESSAGES
// =============================================================================

// SessionChangedMsg signals that a different session became active.
type SessionChangedMsg struct {
	Session *model.Session
}

// MessageAppendedMsg signals a new message in the active session.
type MessageAppendedMsg struct {
	Session *model.Session
	Message *model.Message
}

// StreamChunkMsg delivers one streamed increment.
type StreamChunkMsg struct {
	MessageID string
	Chunk     string
}

// MessageFinalizedMsg signals that a streamed or rewritten message
// reached its final text.
type MessageFinalizedMsg struct {
	Session *model.Session
	Message *model.Message
}

// TitleChangedMsg signals that the async auto-title landed.
type TitleChangedMsg struct {
	Session *model.Session
}

// EngineStateMsg reports Idle/AwaitingResponse transitions.
type EngineStateMsg struct {
	State engine.State
}

// =============================================================================
// TURN MESSAGES
// =============================================================================

// TurnDoneMsg signals that a submitted turn returned. Err carries
// submission failures (busy, empty, no service); generation failures
// surface as assistant error messages instead.
type TurnDoneMsg struct {
	Err error
}

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamTickMsg drives the streaming flush loop.
type StreamTickMsg struct {
	Time time.Time
}

// =============================================================================
// STORAGE MESSAGES
// =============================================================================

// SessionsReloadedMsg signals that the store file changed on disk and
// the session list should be re-read.
type SessionsReloadedMsg struct{}

// =============================================================================
// UI MESSAGES
// =============================================================================

// StatusMsg shows a transient status line (export path, errors).
type StatusMsg struct {
	Text  string
	IsErr bool
}

// clearStatusMsg hides the transient status line.
type clearStatusMsg struct{}
