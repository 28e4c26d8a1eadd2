// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ZeynTheCreator/ZurkAi/internal/ui/styles"
)

// =============================================================================
// WELCOME SCREEN
// =============================================================================

const welcomeLogo = `
 ______          _
|___  /_   _ _ _| | __
   / /| | | | '_| |/ /
  / /_| |_| | | |   <
 /____|\__,_|_| |_|\_\
`

// Welcome renders the first-run screen shown before any messages.
type Welcome struct {
	Version string
	Mode    string
	Width   int
	Height  int
	theme   *styles.Theme
}

// NewWelcome creates a welcome screen component.
func NewWelcome(version, mode string, theme *styles.Theme) *Welcome {
	return &Welcome{
		Version: version,
		Mode:    mode,
		Width:   80,
		Height:  24,
		theme:   theme,
	}
}

// SetSize updates the screen dimensions.
func (w *Welcome) SetSize(width, height int) {
	w.Width = width
	w.Height = height
}

// View renders the welcome screen centered in the available space.
func (w *Welcome) View() string {
	logo := w.theme.WelcomeLogo.Render(strings.TrimPrefix(welcomeLogo, "\n"))
	version := w.theme.WelcomeVersion.Render("v" + w.Version)
	tagline := w.theme.WelcomeInfo.Render("Gemini-backed terminal chat")
	mode := w.theme.WelcomeInfo.Render("Mode: ") + w.theme.WelcomeKey.Render(w.Mode)

	shortcuts := []struct {
		key  string
		desc string
	}{
		{"enter", "send message"},
		{"ctrl+n", "new session"},
		{"ctrl+e", "export chat"},
		{"esc", "cancel generation"},
		{"ctrl+c", "quit"},
	}

	var keys []string
	for _, s := range shortcuts {
		keys = append(keys,
			w.theme.WelcomeKey.Render(s.key)+" "+w.theme.WelcomeInfo.Render(s.desc))
	}

	body := lipgloss.JoinVertical(lipgloss.Center,
		logo,
		version,
		"",
		tagline,
		mode,
		"",
		strings.Join(keys, "   "),
	)

	box := w.theme.WelcomeBox.Render(body)

	return lipgloss.Place(w.Width, w.Height, lipgloss.Center, lipgloss.Center, box)
}
