// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine owns the active conversation: it loads sessions from
// the repository, replays their history into service requests, routes
// user turns (streaming chat, search grounding, image generation,
// multimodal one-shots), and appends results back into the session.
//
// At most one generation is in flight per engine, enforced by the
// Idle/AwaitingResponse state machine and a single cancellation token
// slot. Cancellation finalizes the partial reply with a stop marker;
// it is never surfaced as an error.
package engine
