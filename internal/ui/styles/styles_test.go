// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

// =============================================================================
// COLOR DEFINITION TESTS
// =============================================================================

func TestAdaptiveColorsCarryBothVariants(t *testing.T) {
	colors := []struct {
		name  string
		light string
		dark  string
	}{
		{"Purple", Purple.Light, Purple.Dark},
		{"Cyan", Cyan.Light, Cyan.Dark},
		{"Emerald", Emerald.Light, Emerald.Dark},
		{"Rose", Rose.Light, Rose.Dark},
		{"Amber", Amber.Light, Amber.Dark},
		{"Surface", Surface.Light, Surface.Dark},
		{"TextPrimary", TextPrimary.Light, TextPrimary.Dark},
		{"UserBubbleBg", UserBubbleBg.Light, UserBubbleBg.Dark},
		{"AssistantBubbleBg", AssistantBubbleBg.Light, AssistantBubbleBg.Dark},
		{"NoticeBubbleBg", NoticeBubbleBg.Light, NoticeBubbleBg.Dark},
		{"LinkColor", LinkColor.Light, LinkColor.Dark},
	}

	for _, c := range colors {
		if !strings.HasPrefix(c.light, "#") {
			t.Errorf("%s light variant %q is not a hex color", c.name, c.light)
		}
		if !strings.HasPrefix(c.dark, "#") {
			t.Errorf("%s dark variant %q is not a hex color", c.name, c.dark)
		}
	}
}

func TestStatusIndicatorsAreASCII(t *testing.T) {
	indicators := []string{
		StatusIndicators.Success,
		StatusIndicators.Error,
		StatusIndicators.Warning,
		StatusIndicators.Info,
		StatusIndicators.Pending,
		StatusIndicators.Active,
	}

	for _, ind := range indicators {
		if ind == "" {
			t.Error("status indicator should not be empty")
		}
		for _, r := range ind {
			if r > 127 {
				t.Errorf("indicator %q contains non-ASCII rune %q", ind, r)
			}
		}
	}
}

func TestRenderHelpersIncludeIndicator(t *testing.T) {
	if got := RenderSuccess("saved"); !strings.Contains(got, StatusIndicators.Success) {
		t.Errorf("RenderSuccess output %q missing indicator", got)
	}
	if got := RenderError("failed"); !strings.Contains(got, StatusIndicators.Error) {
		t.Errorf("RenderError output %q missing indicator", got)
	}
	if got := RenderWarning("careful"); !strings.Contains(got, StatusIndicators.Warning) {
		t.Errorf("RenderWarning output %q missing indicator", got)
	}
	if got := RenderInfo("note"); !strings.Contains(got, StatusIndicators.Info) {
		t.Errorf("RenderInfo output %q missing indicator", got)
	}
	if got := RenderStatus(true, "done"); !strings.Contains(got, StatusIndicators.Success) {
		t.Errorf("RenderStatus(true) output %q missing success indicator", got)
	}
	if got := RenderLink("https://example.com"); !strings.Contains(got, "example.com") {
		t.Errorf("RenderLink output %q missing link text", got)
	}
}

// =============================================================================
// THEME TESTS
// =============================================================================

func TestNewThemeInitializesStyles(t *testing.T) {
	theme := NewTheme()

	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}
	// Spot-check that core styles render without panicking.
	for name, render := range map[string]func() string{
		"UserBubble":      func() string { return theme.UserBubble.Render("hi") },
		"AssistantBubble": func() string { return theme.AssistantBubble.Render("hello") },
		"NoticeBubble":    func() string { return theme.NoticeBubble.Render("stopped") },
		"StatusBar":       func() string { return theme.StatusBar.Render("status") },
		"ErrorBox":        func() string { return theme.ErrorBox.Render("boom") },
		"WelcomeBox":      func() string { return theme.WelcomeBox.Render("welcome") },
	} {
		if out := render(); out == "" {
			t.Errorf("%s rendered empty output", name)
		}
	}
}

func TestThemeLayoutModes(t *testing.T) {
	theme := NewTheme()

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("GetLayoutMode() at width %d = %v, want %v", tt.width, got, tt.want)
		}
	}
}
