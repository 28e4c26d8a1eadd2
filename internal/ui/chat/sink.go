// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ZeynTheCreator/ZurkAi/internal/engine"
	"github.com/ZeynTheCreator/ZurkAi/internal/model"
)

// =============================================================================
// PROGRAM SINK
// =============================================================================

// ProgramSink bridges engine events into the Bubble Tea loop. The
// engine calls it from turn goroutines; each callback is forwarded as
// a tea.Msg via Program.Send, which is safe from any goroutine.
//
// The program is attached after construction because the engine needs
// a sink before tea.NewProgram can exist. Events arriving before
// SetProgram are dropped; the view re-reads the active session on
// startup anyway.
type ProgramSink struct {
	mu      sync.RWMutex
	program *tea.Program
}

// NewProgramSink creates a sink with no program attached.
func NewProgramSink() *ProgramSink {
	return &ProgramSink{}
}

// SetProgram attaches the running program.
func (s *ProgramSink) SetProgram(p *tea.Program) {
	s.mu.Lock()
	s.program = p
	s.mu.Unlock()
}

func (s *ProgramSink) send(msg tea.Msg) {
	s.mu.RLock()
	p := s.program
	s.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

func (s *ProgramSink) SessionChanged(sess *model.Session) {
	s.send(SessionChangedMsg{Session: sess})
}

func (s *ProgramSink) MessageAppended(sess *model.Session, msg *model.Message) {
	s.send(MessageAppendedMsg{Session: sess, Message: msg})
}

func (s *ProgramSink) StreamChunk(messageID, chunk string) {
	s.send(StreamChunkMsg{MessageID: messageID, Chunk: chunk})
}

func (s *ProgramSink) MessageFinalized(sess *model.Session, msg *model.Message) {
	s.send(MessageFinalizedMsg{Session: sess, Message: msg})
}

func (s *ProgramSink) TitleChanged(sess *model.Session) {
	s.send(TitleChangedMsg{Session: sess})
}

func (s *ProgramSink) StateChanged(state engine.State) {
	s.send(EngineStateMsg{State: state})
}

var _ engine.Sink = (*ProgramSink)(nil)
