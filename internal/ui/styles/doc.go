// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the zurk TUI.

This package defines the complete color palette and component styles used
throughout the application. All colors use Lip Gloss AdaptiveColor for
automatic light/dark terminal detection.

# Color System (colors.go)

## Primary Accent Colors

  - Purple - Primary accent for assistant messages and selections
  - Cyan - Brand color for info, commands, and user highlights
  - Emerald - Success states and grounded answers
  - Amber - Warnings, cancelled generations, document attachments
  - Rose - Errors and failed generations

## Semantic Colors

Message bubbles and UI elements use semantic color tokens:

	UserBubbleBg      - Background for user messages
	UserBubbleFg      - Text color for user messages
	AssistantBubbleBg - Background for assistant messages
	AssistantBubbleFg - Text color for assistant messages
	NoticeBubbleBg    - Background for cancelled or degraded turns

## Accessibility

StatusIndicators carry ASCII shape markers ([OK], [X], [!], [i]) so state
is readable without color, and the Render* helpers pair them with
high-contrast styles.

# Theme (theme.go)

Theme bundles every styled component the chat view needs: header, message
bubbles, input area, status bar, spinner, grounding reference list, error
box, session list, and welcome screen. NewTheme detects the terminal's
color profile and dark/light background; SetSize and GetLayoutMode drive
responsive layout.
*/
package styles
