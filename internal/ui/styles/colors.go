// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the zurk TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

// Purple - Primary accent, assistant messages, selections
var Purple = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#B794F6"}

// PurpleDeep - Darker purple for backgrounds
var PurpleDeep = lipgloss.AdaptiveColor{Light: "#4C1D95", Dark: "#44337A"}

// Cyan - Brand color, info, commands, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#38BDF8"}

// CyanDeep - Darker cyan for backgrounds
var CyanDeep = lipgloss.AdaptiveColor{Light: "#155E75", Dark: "#0C4A6E"}

// Emerald - Success states, grounded answers
var Emerald = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#4ADE80"}

// =============================================================================
// SEMANTIC COLORS
// =============================================================================

// Rose - Errors, failed generations
var Rose = lipgloss.AdaptiveColor{Light: "#BE123C", Dark: "#F87180"}

// RoseDeep - Darker rose for backgrounds
var RoseDeep = lipgloss.AdaptiveColor{Light: "#9F1239", Dark: "#6B1030"}

// Amber - Warnings, cancelled generations, document attachments
var Amber = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Surface - Main background
var Surface = lipgloss.AdaptiveColor{Light: "#FDFDFD", Dark: "#15151F"}

// SurfaceDim - Slightly darker/lighter surface for headers/footers
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#F1F0F3", Dark: "#10101A"}

// Overlay - Borders, separators, subtle backgrounds
var Overlay = lipgloss.AdaptiveColor{Light: "#E2E0E6", Dark: "#2A2A3C"}

// OverlayDim - Dimmer overlay for less prominent elements
var OverlayDim = lipgloss.AdaptiveColor{Light: "#CFCDD6", Dark: "#3C3C52"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// TextPrimary - Main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#222733", Dark: "#D5DBF0"}

// TextSecondary - Labels, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#5E6472", Dark: "#9CA3C0"}

// TextMuted - Hints, timestamps, very subtle text
var TextMuted = lipgloss.AdaptiveColor{Light: "#8B90A0", Dark: "#60637E"}

// TextInverse - Text on colored backgrounds
var TextInverse = lipgloss.AdaptiveColor{Light: "#FDFDFD", Dark: "#15151F"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// User message bubble - Blue tones
var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#D6E8FC", Dark: "#1A4FB8"}
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#17398F", Dark: "#D9EEFC"}
var UserBubbleBorder = lipgloss.AdaptiveColor{Light: "#2F74E8", Dark: "#2F74E8"}

// Assistant message bubble - Soft violet tones, muted rather than saturated
var AssistantBubbleBg = lipgloss.AdaptiveColor{Light: "#F3F0FC", Dark: "#34304D"}
var AssistantBubbleFg = lipgloss.AdaptiveColor{Light: "#514180", Dark: "#E5DFF2"}
var AssistantBubbleBorder = lipgloss.AdaptiveColor{Light: "#BBA8F4", Dark: "#B794F6"}

// Notice bubble - Amber tones for cancelled or degraded turns
var NoticeBubbleBg = lipgloss.AdaptiveColor{Light: "#FBEFC8", Dark: "#6B3D0C"}
var NoticeBubbleFg = lipgloss.AdaptiveColor{Light: "#84420D", Dark: "#FBEFC8"}
var NoticeBubbleBorder = lipgloss.AdaptiveColor{Light: "#E89A0B", Dark: "#E89A0B"}

// =============================================================================
// SPECIAL EFFECTS
// =============================================================================

// Gradient start/end for header effects
var GradientStart = Purple
var GradientEnd = Cyan

// Focus ring color
var FocusRing = Cyan

// Selection highlight
var SelectionBg = lipgloss.AdaptiveColor{Light: "#B9D6F7", Dark: "#1B3556"}

// =============================================================================
// STATUS INDICATORS
// =============================================================================

// StatusIndicatorSet holds ASCII shape indicators for status states, so
// state is readable without color.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
	Pending string
	Active  string
}

// StatusIndicators is the indicator set used across both frontends.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
	Pending: "[ ]",
	Active:  "[*]",
}

// High-contrast variants pair with the indicators above for status lines.
var (
	SuccessHighContrast = lipgloss.AdaptiveColor{Light: "#166534", Dark: "#2FD464"}
	ErrorHighContrast   = lipgloss.AdaptiveColor{Light: "#C01E1E", Dark: "#F25656"}
	WarningHighContrast = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#E89A0B"}
	InfoHighContrast    = lipgloss.AdaptiveColor{Light: "#1D4FD8", Dark: "#2F74E8"}
)

// LinkColor is used for grounding reference URIs.
var LinkColor = lipgloss.AdaptiveColor{Light: "#1D4FD8", Dark: "#54A0F8"}

// =============================================================================
// STATUS RENDER HELPERS
// =============================================================================

func renderIndicator(indicator string, color lipgloss.AdaptiveColor, message string) string {
	return lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Render(indicator + " " + message)
}

// RenderSuccess renders a success status line.
func RenderSuccess(message string) string {
	return renderIndicator(StatusIndicators.Success, SuccessHighContrast, message)
}

// RenderError renders an error status line.
func RenderError(message string) string {
	return renderIndicator(StatusIndicators.Error, ErrorHighContrast, message)
}

// RenderWarning renders a warning status line.
func RenderWarning(message string) string {
	return renderIndicator(StatusIndicators.Warning, WarningHighContrast, message)
}

// RenderInfo renders an informational status line.
func RenderInfo(message string) string {
	return renderIndicator(StatusIndicators.Info, InfoHighContrast, message)
}

// RenderStatus picks the success or error rendering.
func RenderStatus(success bool, message string) string {
	if success {
		return RenderSuccess(message)
	}
	return RenderError(message)
}

// RenderLink renders text as an underlined link.
func RenderLink(text string) string {
	return lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true).
		Render(text)
}
