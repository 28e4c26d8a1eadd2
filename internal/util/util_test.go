// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "data.json")

	if err := AtomicWriteFile(path, []byte(`{"ok":true}`), 0644); err != nil {
		t.Fatalf("AtomicWriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("content = %q, want %q", data, `{"ok":true}`)
	}

	// Overwrite must replace, not append.
	if err := AtomicWriteFile(path, []byte("v2"), 0644); err != nil {
		t.Fatalf("second write failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != "v2" {
		t.Errorf("content after overwrite = %q, want %q", data, "v2")
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected 1 file in dir, got %d", len(entries))
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 0, ""},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := TruncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestClampRunes(t *testing.T) {
	if got := ClampRunes("hello", 3); got != "hel" {
		t.Errorf("ClampRunes = %q, want %q", got, "hel")
	}
	if got := ClampRunes("hi", 100); got != "hi" {
		t.Errorf("ClampRunes = %q, want %q", got, "hi")
	}
}

func TestTruncateWidth(t *testing.T) {
	// CJK characters occupy two columns each.
	if got := TruncateWidth("日本語のテキスト", 6); got != "日..." {
		t.Errorf("TruncateWidth = %q", got)
	}
	if got := TruncateWidth("short", 10); got != "short" {
		t.Errorf("TruncateWidth = %q, want unchanged", got)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"New Chat", "new-chat"},
		{"What's Go? (edited)", "what-s-go-edited"},
		{"   ", "chat"},
		{"Trip to 東京", "trip-to"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
