// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements argument parsing and the non-TUI command
// surface of zurk: the line-oriented chat REPL, session export, config
// inspection, and version output.
package cli
