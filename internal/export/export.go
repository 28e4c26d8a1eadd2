// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ZeynTheCreator/ZurkAi/internal/model"
	"github.com/ZeynTheCreator/ZurkAi/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a session into a target format.
type Exporter interface {
	// Export converts the session and returns the file content.
	Export(sess *model.Session) ([]byte, error)

	// FileExtension returns the extension for the format (e.g. ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files are written.
	// Default: current working directory.
	OutputDir string

	// Filename overrides the generated file name. The exporter's
	// extension is appended when missing.
	Filename string
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{OutputDir: "."}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile renders the session with the given exporter and writes
// it atomically. Returns the output file path.
func ExportToFile(sess *model.Session, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(sess)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := opts.Filename
	if filename == "" {
		filename = DefaultFilename(sess, exporter.FileExtension())
	}
	if filepath.Ext(filename) == "" {
		filename += exporter.FileExtension()
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// ExportMarkdown exports the session to Markdown.
func ExportMarkdown(sess *model.Session, opts *Options) (string, error) {
	return ExportToFile(sess, NewMarkdownExporter(), opts)
}

// DefaultFilename derives a file name from the session title and the
// current date, e.g. "zurk-rust-borrow-checker-2025-08-31.md".
func DefaultFilename(sess *model.Session, ext string) string {
	return fmt.Sprintf("zurk-%s-%s%s",
		util.Slugify(sess.Title),
		time.Now().Format("2006-01-02"),
		ext,
	)
}
