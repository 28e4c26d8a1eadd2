// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"github.com/ZeynTheCreator/ZurkAi/internal/model"
)

// =============================================================================
// STATE
// =============================================================================

// State is the engine's generation state.
type State int

const (
	// StateIdle means no generation is in flight.
	StateIdle State = iota

	// StateAwaitingResponse means a generation is in flight.
	StateAwaitingResponse
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting-response"
	default:
		return "unknown"
	}
}

// =============================================================================
// EVENT SINK
// =============================================================================

// Sink receives engine events. Methods are called from the goroutine
// running the turn (or the async title goroutine); UI implementations
// typically forward them into their own event loop.
type Sink interface {
	// SessionChanged fires when a different session becomes active.
	SessionChanged(sess *model.Session)

	// MessageAppended fires when a message joins the active session,
	// including the (still empty) streaming assistant message.
	MessageAppended(sess *model.Session, msg *model.Message)

	// StreamChunk delivers one streamed increment for the message with
	// the given id, in arrival order.
	StreamChunk(messageID, chunk string)

	// MessageFinalized fires when a streamed or rewritten message
	// reaches its stored form.
	MessageFinalized(sess *model.Session, msg *model.Message)

	// TitleChanged fires when the async auto-title lands.
	TitleChanged(sess *model.Session)

	// StateChanged reports Idle/AwaitingResponse transitions.
	StateChanged(state State)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) SessionChanged(*model.Session)                  {}
func (NopSink) MessageAppended(*model.Session, *model.Message) {}
func (NopSink) StreamChunk(string, string)                     {}
func (NopSink) MessageFinalized(*model.Session, *model.Message) {}
func (NopSink) TitleChanged(*model.Session)                     {}
func (NopSink) StateChanged(State)                              {}
