// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual UI components for the zurk TUI.

Each component renders one piece of the chat screen:

  - MessageBubble / MessageList (message.go) - user and assistant chat
    bubbles, streaming cursor, inline image notes, and grounding
    reference lists
  - CodeBlock (codeblock.go) - fenced code blocks with chroma syntax
    highlighting, used as the fallback when glamour is unavailable
  - Welcome (welcome.go) - the first-run screen with keyboard shortcuts
  - StatusBar (statusbar.go) - mode badge, document badge, generation
    state, and key hints

Components are pure view helpers: they take data and a styles.Theme and
return rendered strings for the Bubble Tea view.
*/
package components
