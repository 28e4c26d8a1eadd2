// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ZeynTheCreator/ZurkAi/internal/engine"
)

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		m.refreshViewport(true)
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	// Engine events

	case SessionChangedMsg:
		m.snapshotSession(msg.Session)
		m.streamingMsgID = ""
		m.streamText.Reset()
		m.buffer.Reset()
		m.refreshViewport(true)
		return m, nil

	case MessageAppendedMsg:
		m.snapshotSession(msg.Session)
		if msg.Message.IsStreaming {
			m.streamingMsgID = msg.Message.ID
			m.streamText.Reset()
			m.buffer.Reset()
		}
		m.refreshViewport(true)
		return m, nil

	case StreamChunkMsg:
		if msg.MessageID == m.streamingMsgID {
			m.buffer.Write(msg.Chunk)
		}
		return m, nil

	case StreamTickMsg:
		if content, ok := m.buffer.Flush(); ok {
			m.streamText.WriteString(content)
			m.refreshViewport(true)
		}
		if m.generating || m.streamingMsgID != "" {
			return m, streamTickCmd(m.cfg.UI.StreamFPS)
		}
		return m, nil

	case MessageFinalizedMsg:
		if content, ok := m.buffer.ForceFlush(); ok {
			m.streamText.WriteString(content)
		}
		m.streamingMsgID = ""
		m.streamText.Reset()
		m.snapshotSession(msg.Session)
		m.refreshViewport(true)
		return m, nil

	case TitleChangedMsg:
		if msg.Session != nil && msg.Session.ID == m.sessionID {
			m.sessionTitle = msg.Session.Title
		}
		return m, nil

	case EngineStateMsg:
		wasGenerating := m.generating
		m.generating = msg.State == engine.StateAwaitingResponse
		if m.generating && !wasGenerating {
			m.thinkingStart = time.Now()
			cmds = append(cmds, streamTickCmd(m.cfg.UI.StreamFPS), m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case TurnDoneMsg:
		if msg.Err != nil {
			m.statusText = msg.Err.Error()
			m.statusIsErr = true
			return m, clearStatusCmd()
		}
		return m, nil

	// Storage events

	case SessionsReloadedMsg:
		if active := m.eng.Active(); active != nil {
			m.snapshotSession(active)
			m.refreshViewport(false)
		}
		return m, nil

	// UI events

	case StatusMsg:
		m.statusText = msg.Text
		m.statusIsErr = msg.IsErr
		return m, clearStatusCmd()

	case clearStatusMsg:
		m.statusText = ""
		m.statusIsErr = false
		return m, nil

	case spinner.TickMsg:
		if m.generating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	// Everything else goes to the focused input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey routes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showSessions {
		return m.handleSessionPickerKey(msg)
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		if m.generating {
			m.eng.CancelActive()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		if m.generating {
			m.eng.CancelActive()
			m.statusText = "cancelling..."
			m.statusIsErr = false
			return m, clearStatusCmd()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Sessions):
		m.showSessions = true
		return m, nil

	case key.Matches(msg, m.keyMap.NewSession):
		if m.generating {
			return m, nil
		}
		return m, newSessionCmd(m.eng, m.sessionMode)

	case key.Matches(msg, m.keyMap.Export):
		return m, exportCmd(m.eng)

	case key.Matches(msg, m.keyMap.Submit):
		if m.generating {
			return m, nil
		}
		prompt := strings.TrimSpace(m.input.Value())
		if prompt == "" {
			return m, nil
		}
		m.input.Reset()
		m.generating = true
		m.thinkingStart = time.Now()
		return m, tea.Batch(
			submitCmd(m.eng, prompt),
			streamTickCmd(m.cfg.UI.StreamFPS),
			m.spinner.Tick,
		)

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSessionPickerKey handles input while the session list is open.
// Digits 1-9 switch to that session; esc or ctrl+l closes the picker.
func (m Model) handleSessionPickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Cancel), key.Matches(msg, m.keyMap.Sessions):
		m.showSessions = false
		return m, nil

	case key.Matches(msg, m.keyMap.Quit):
		if m.generating {
			m.eng.CancelActive()
		}
		return m, tea.Quit
	}

	s := msg.String()
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		idx := int(s[0] - '1')
		if idx < len(m.sessionList) {
			m.showSessions = false
			return m, switchSessionCmd(m.eng, m.sessionList[idx].ID)
		}
	}
	return m, nil
}

// layout recomputes component dimensions after a resize.
func (m *Model) layout() {
	headerHeight := 3
	inputHeight := 3
	statusHeight := 1

	vpHeight := m.height - headerHeight - inputHeight - statusHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	m.viewport.Width = m.width
	m.viewport.Height = vpHeight
	m.input.Width = m.width - 6
}
