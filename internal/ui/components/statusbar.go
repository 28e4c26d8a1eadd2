// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ZeynTheCreator/ZurkAi/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar renders the bottom bar: generation state, persona mode,
// document badge, session position, and key hints.
type StatusBar struct {
	Width        int
	Mode         string
	Generating   bool
	DocumentName string
	SessionIndex int
	SessionCount int
	theme        *styles.Theme
}

// NewStatusBar creates a status bar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the status bar as a single line.
func (s *StatusBar) View() string {
	var left []string

	if s.Generating {
		left = append(left, s.theme.WarningStyle.Render(styles.StatusIndicators.Pending+" generating"))
	} else {
		left = append(left, s.theme.SuccessStyle.Render(styles.StatusIndicators.Active+" ready"))
	}

	if s.Mode != "" {
		left = append(left, s.theme.ModeBadge.Render(s.Mode))
	}
	if s.DocumentName != "" {
		left = append(left, s.theme.DocBadge.Render("doc:"+s.DocumentName))
	}
	if s.SessionCount > 0 {
		left = append(left, s.theme.StatusBar.Render(
			"session "+strconv.Itoa(s.SessionIndex+1)+"/"+strconv.Itoa(s.SessionCount)))
	}

	hints := []struct {
		key  string
		desc string
	}{
		{"^n", "new"},
		{"^e", "export"},
		{"esc", "cancel"},
	}
	var right []string
	for _, h := range hints {
		right = append(right,
			s.theme.ShortcutKey.Render(h.key)+s.theme.ShortcutDesc.Render(" "+h.desc))
	}

	leftStr := strings.Join(left, "  ")
	rightStr := strings.Join(right, "  ")

	gap := s.Width - lipgloss.Width(leftStr) - lipgloss.Width(rightStr) - 2
	if gap < 1 {
		gap = 1
	}

	return s.theme.StatusBar.Width(s.Width).Render(
		leftStr + strings.Repeat(" ", gap) + rightStr)
}
