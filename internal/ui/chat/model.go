// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/ZeynTheCreator/ZurkAi/internal/config"
	"github.com/ZeynTheCreator/ZurkAi/internal/engine"
	"github.com/ZeynTheCreator/ZurkAi/internal/export"
	"github.com/ZeynTheCreator/ZurkAi/internal/model"
	"github.com/ZeynTheCreator/ZurkAi/internal/persona"
	"github.com/ZeynTheCreator/ZurkAi/internal/storage"
	"github.com/ZeynTheCreator/ZurkAi/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	theme   *styles.Theme
	version string

	width  int
	height int

	eng *engine.Engine
	cfg *config.Config

	// Active session snapshot. Message pointers are shared with the
	// engine but only re-read after an engine event arrives on the
	// loop, so renders never race a turn goroutine.
	sessionID    string
	sessionTitle string
	sessionMode  model.Mode
	documentName string
	messages     []*model.Message
	sessionIndex int
	sessionCount int
	sessionList  []*model.Session

	// Session picker overlay
	showSessions bool

	// Streaming state
	generating     bool
	streamingMsgID string
	streamText     strings.Builder
	buffer         *StreamingBuffer

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Markdown rendering; nil falls back to chroma code blocks only.
	renderer *glamour.TermRenderer

	// Transient status line
	statusText  string
	statusIsErr bool

	thinkingStart time.Time
	ready         bool
}

// New creates a new chat model over a bootstrapped engine.
func New(eng *engine.Engine, cfg *config.Config, theme *styles.Theme, version string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message, or /image <description>..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 30,
	}
	sp.Style = theme.Spinner

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(76),
	)

	m := Model{
		theme:    theme,
		version:  version,
		eng:      eng,
		cfg:      cfg,
		buffer:   NewStreamingBufferWithConfig(15, cfg.UI.StreamFPS),
		viewport: vp,
		input:    ti,
		spinner:  sp,
		keyMap:   DefaultKeyMap(),
		renderer: renderer,
	}

	m.snapshotSession(eng.Active())
	return m
}

// Init starts the input blink and spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// snapshotSession copies the rendering state out of a session.
func (m *Model) snapshotSession(sess *model.Session) {
	if sess == nil {
		return
	}
	m.sessionID = sess.ID
	m.sessionTitle = sess.Title
	m.sessionMode = sess.Mode
	m.documentName = ""
	if sess.Document != nil {
		m.documentName = sess.Document.Name
	}
	m.messages = append([]*model.Message(nil), sess.Messages...)

	sessions := m.eng.Store().Sessions()
	m.sessionList = sessions
	m.sessionCount = len(sessions)
	m.sessionIndex = 0
	for i, s := range sessions {
		if s.ID == sess.ID {
			m.sessionIndex = i
			break
		}
	}
}

// modeDisplayName returns the persona display name for the status bar.
func (m *Model) modeDisplayName() string {
	return persona.DisplayName(m.sessionMode)
}

// =============================================================================
// COMMANDS
// =============================================================================

// submitCmd runs one turn. The engine serializes turns and returns
// ErrBusy when one is already in flight.
func submitCmd(eng *engine.Engine, prompt string) tea.Cmd {
	return func() tea.Msg {
		return TurnDoneMsg{Err: eng.SubmitTurn(prompt, nil)}
	}
}

// newSessionCmd starts a fresh session in the current mode.
func newSessionCmd(eng *engine.Engine, mode model.Mode) tea.Cmd {
	return func() tea.Msg {
		if _, err := eng.StartNewSession(mode, "", ""); err != nil {
			return StatusMsg{Text: err.Error(), IsErr: true}
		}
		return StatusMsg{Text: "new session"}
	}
}

// switchSessionCmd activates a stored session; the engine emits
// SessionChanged when it lands.
func switchSessionCmd(eng *engine.Engine, id string) tea.Cmd {
	return func() tea.Msg {
		eng.LoadSession(id)
		return nil
	}
}

// exportCmd writes the active session as Markdown.
func exportCmd(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		active := eng.Active()
		if active == nil {
			return StatusMsg{Text: "no active session", IsErr: true}
		}
		path, err := export.ExportMarkdown(active, export.DefaultOptions())
		if err != nil {
			return StatusMsg{Text: "export failed: " + err.Error(), IsErr: true}
		}
		return StatusMsg{Text: "exported to " + path}
	}
}

// clearStatusCmd hides the status line after a short delay.
func clearStatusCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// =============================================================================
// PROGRAM ENTRY
// =============================================================================

// Run wires the engine to a new Bubble Tea program and blocks until
// the user quits. The store watcher keeps the session list current
// when another zurk process writes the store file.
func Run(eng *engine.Engine, cfg *config.Config, version string) error {
	sink := NewProgramSink()
	eng.SetSink(sink)
	eng.Bootstrap()

	theme := styles.NewTheme()
	m := New(eng, cfg, theme, version)

	p := tea.NewProgram(m, tea.WithAltScreen())
	sink.SetProgram(p)

	if dir, err := cfg.StorageDir(); err == nil {
		watcher, err := storage.NewWatcher(dir, 500*time.Millisecond, func() {
			p.Send(SessionsReloadedMsg{})
		})
		if err == nil {
			defer watcher.Close()
		}
	}

	_, err := p.Run()
	eng.WaitForTitles()
	return err
}
