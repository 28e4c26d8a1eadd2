// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the Bubble Tea chat view, the default zurk
frontend.

# Architecture

The view is a standard Bubble Tea model over the conversation engine.
Engine events arrive through a program sink (sink.go) that forwards
each engine.Sink callback as a tea.Msg, so all mutation happens on the
Bubble Tea loop. Turns run inside tea.Cmd goroutines; the engine
serializes them and rejects input while a generation is in flight.

# Streaming

Streamed tokens are not rendered one-by-one. A StreamingBuffer
(streaming.go) batches chunks and a 30fps tick drains it, which keeps
rendering smooth without burning CPU on every token.

# Key bindings

	enter        send message
	ctrl+n       new session
	ctrl+e       export session as Markdown
	esc          cancel in-flight generation
	ctrl+c       quit (cancels first when generating)
	pgup/pgdn    scroll history

Slash commands typed into the input (for example /image) are passed
through to the engine untouched.
*/
package chat
