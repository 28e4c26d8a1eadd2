// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/ZeynTheCreator/ZurkAi/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders a session as Markdown.
type MarkdownExporter struct{}

var _ Exporter = (*MarkdownExporter)(nil)

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export renders the session. Every message becomes a heading with the
// sender's display name, an optional inline image, the text, and a
// trailing horizontal rule.
func (e *MarkdownExporter) Export(sess *model.Session) ([]byte, error) {
	var md strings.Builder

	fmt.Fprintf(&md, "# Chat: %s\n\n**Mode:** %s\n\n---\n\n", sess.Title, sess.Mode)

	for _, msg := range sess.Messages {
		fmt.Fprintf(&md, "### **%s**\n\n", msg.Sender.DisplayName())
		if msg.ImageURL != "" {
			fmt.Fprintf(&md, "![Image](%s)\n\n", msg.ImageURL)
		}
		fmt.Fprintf(&md, "%s\n\n---\n\n", msg.Text)
	}

	return []byte(md.String()), nil
}

// FileExtension returns ".md".
func (e *MarkdownExporter) FileExtension() string { return ".md" }

// MimeType returns the Markdown MIME type.
func (e *MarkdownExporter) MimeType() string { return "text/markdown" }
