// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes chat sessions to shareable files.
//
// The canonical format is Markdown: a title and mode header followed by
// one block per message, horizontal rules between them, with inline
// image links for generated images.
package export
