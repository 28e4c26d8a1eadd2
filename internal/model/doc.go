// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the core data structures for zurk: chat
// messages, sessions, conversation modes, and grounding references.
//
// A Session is one persisted conversation. Its message list is
// append-only during normal operation; edits produce a forked session
// via Fork rather than mutating history in place.
package model
