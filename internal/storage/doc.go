// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable persistence for zurk.
//
// The bottom layer is a string-keyed blob store (KV) with two
// backends: one JSON file per key written atomically, or a single
// SQLite database. On top of it, Store implements the session
// repository: the ordered session list, the active session id, and the
// saved custom persona, under the keys zurk-chat-history,
// zurk-active-chat-id and zurk-custom-persona.
//
// A corrupt or missing blob always degrades to empty state; it never
// propagates as a fatal error.
package storage
