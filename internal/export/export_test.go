// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZeynTheCreator/ZurkAi/internal/model"
)

func sampleSession(t *testing.T) *model.Session {
	t.Helper()
	sess := model.NewSession(model.ModeZurk, "")
	sess.Title = "Rust Borrow Checker"

	user, err := model.NewUserMessage("explain the borrow checker", "")
	if err != nil {
		t.Fatalf("NewUserMessage: %v", err)
	}
	sess.Append(user)
	sess.Append(model.NewAssistantMessage("It enforces ownership at compile time."))
	sess.Append(model.NewImageMessage("Image for: a crab", "data:image/jpeg;base64,AAAA"))
	return sess
}

func TestMarkdownExporter_Format(t *testing.T) {
	sess := sampleSession(t)

	content, err := NewMarkdownExporter().Export(sess)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	got := string(content)

	wantHeader := "# Chat: Rust Borrow Checker\n\n**Mode:** zurk\n\n---\n\n"
	if !strings.HasPrefix(got, wantHeader) {
		t.Errorf("header = %q, want prefix %q", got[:min(len(got), len(wantHeader))], wantHeader)
	}

	wantUser := "### **User**\n\nexplain the borrow checker\n\n---\n\n"
	if !strings.Contains(got, wantUser) {
		t.Errorf("missing user block %q in:\n%s", wantUser, got)
	}

	wantReply := "### **ZurkAI**\n\nIt enforces ownership at compile time.\n\n---\n\n"
	if !strings.Contains(got, wantReply) {
		t.Errorf("missing reply block %q in:\n%s", wantReply, got)
	}

	wantImage := "### **ZurkAI**\n\n![Image](data:image/jpeg;base64,AAAA)\n\nImage for: a crab\n\n---\n\n"
	if !strings.Contains(got, wantImage) {
		t.Errorf("missing image block %q in:\n%s", wantImage, got)
	}

	if !strings.HasSuffix(got, "---\n\n") {
		t.Errorf("export should end with a rule, got tail %q", got[max(0, len(got)-10):])
	}
}

func TestMarkdownExporter_EmptySession(t *testing.T) {
	sess := model.NewSession(model.ModeCoder, "")
	sess.Title = "Empty"

	content, err := NewMarkdownExporter().Export(sess)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	want := "# Chat: Empty\n\n**Mode:** coder\n\n---\n\n"
	if string(content) != want {
		t.Errorf("Export = %q, want %q", content, want)
	}
}

func TestExportToFile_DefaultName(t *testing.T) {
	sess := sampleSession(t)
	dir := t.TempDir()

	path, err := ExportMarkdown(sess, &Options{OutputDir: dir})
	if err != nil {
		t.Fatalf("ExportMarkdown: %v", err)
	}

	wantName := "zurk-rust-borrow-checker-" + time.Now().Format("2006-01-02") + ".md"
	if filepath.Base(path) != wantName {
		t.Errorf("filename = %q, want %q", filepath.Base(path), wantName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "# Chat: Rust Borrow Checker\n") {
		t.Errorf("file content does not start with the chat header")
	}
}

func TestExportToFile_FilenameOverride(t *testing.T) {
	sess := sampleSession(t)
	dir := t.TempDir()

	path, err := ExportToFile(sess, NewMarkdownExporter(), &Options{
		OutputDir: dir,
		Filename:  "session",
	})
	if err != nil {
		t.Fatalf("ExportToFile: %v", err)
	}
	if filepath.Base(path) != "session.md" {
		t.Errorf("filename = %q, want session.md", filepath.Base(path))
	}
}
