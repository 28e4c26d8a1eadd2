// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZeynTheCreator/ZurkAi/internal/config"
	"github.com/ZeynTheCreator/ZurkAi/internal/engine"
	"github.com/ZeynTheCreator/ZurkAi/internal/persona"
	"github.com/ZeynTheCreator/ZurkAi/internal/storage"
	"github.com/ZeynTheCreator/ZurkAi/internal/ui/styles"
)

func testModel(t *testing.T) Model {
	t.Helper()

	kv, err := storage.NewFileKV(t.TempDir())
	require.NoError(t, err)
	store := storage.NewStore(kv)
	t.Cleanup(func() { store.Close() })

	eng := engine.New(store, nil, persona.New(""), nil)
	eng.Bootstrap()

	return New(eng, config.Default(), styles.NewTheme(), "test")
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelResizeMakesReady(t *testing.T) {
	m := testModel(t)
	assert.False(t, m.ready)

	m = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})
	assert.True(t, m.ready)
	assert.Equal(t, 100, m.width)
}

func TestModelScrollKeys(t *testing.T) {
	m := testModel(t)
	m = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	// Half-page and jump scrolling must not disturb the rest of the
	// model state.
	for _, msg := range []tea.KeyMsg{
		{Type: tea.KeyPgUp},
		{Type: tea.KeyPgDown},
		{Type: tea.KeyHome},
		{Type: tea.KeyEnd},
	} {
		m = update(m, msg)
	}
	assert.False(t, m.generating)
	assert.NotEmpty(t, m.sessionID)
}

func TestModelSessionPickerToggle(t *testing.T) {
	m := testModel(t)
	m = update(m, tea.WindowSizeMsg{Width: 100, Height: 40})

	m = update(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.True(t, m.showSessions)

	// A digit past the list length is ignored.
	m = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'9'}})
	assert.True(t, m.showSessions)

	m = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showSessions)
}
