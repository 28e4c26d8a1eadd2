// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gemini wraps the Google generative-language service behind a
// small interface with one explicit result variant per call shape:
// streamed text, final text with citations, described image, generated
// image, and title summarization. The conversation engine depends only
// on the Service interface; ScriptedService stands in for the real
// client in tests.
package gemini
