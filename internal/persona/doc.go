// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package persona maps conversation modes to the system instruction or
// tool configuration used when opening a conversation with the
// generative service. The mapping is static configuration data except
// for the developer mode, whose instruction is assembled once at
// startup from a snapshot of the application's own source.
package persona
