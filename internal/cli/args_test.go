// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

func TestArgParserBasics(t *testing.T) {
	p := NewArgParser([]string{"export", "--output", "chat.md", "--stdout"})

	if p.Subcommand() != "export" {
		t.Errorf("Subcommand() = %q, want %q", p.Subcommand(), "export")
	}
	if got := p.Flag("output"); got != "chat.md" {
		t.Errorf("Flag(output) = %q, want %q", got, "chat.md")
	}
	if !p.BoolFlag("stdout") {
		t.Error("BoolFlag(stdout) = false, want true")
	}
	if p.BoolFlag("missing") {
		t.Error("BoolFlag(missing) = true, want false")
	}
}

func TestArgParserEqualsSyntax(t *testing.T) {
	p := NewArgParser([]string{"chat", "--mode=coder", "--json=true", "--quiet=false"})

	if got := p.Flag("mode"); got != "coder" {
		t.Errorf("Flag(mode) = %q, want %q", got, "coder")
	}
	if !p.BoolFlag("json") {
		t.Error("BoolFlag(json) = false, want true")
	}
	if p.BoolFlag("quiet") {
		t.Error("explicit --quiet=false should read as false")
	}
}

func TestArgParserFlagWithDashes(t *testing.T) {
	p := NewArgParser([]string{"--output", "out.md"})
	if got := p.Flag("--output"); got != "out.md" {
		t.Errorf("Flag with leading dashes = %q, want %q", got, "out.md")
	}
}

func TestArgParserPositionals(t *testing.T) {
	p := NewArgParser([]string{"export", "abc123", "--stdout"})

	if got := p.PositionalCount(); got != 2 {
		t.Fatalf("PositionalCount() = %d, want 2", got)
	}
	if got := p.Positional(1); got != "abc123" {
		t.Errorf("Positional(1) = %q, want %q", got, "abc123")
	}
	if got := p.Positional(5); got != "" {
		t.Errorf("out-of-range Positional = %q, want empty", got)
	}
}

func TestArgParserFlagInt(t *testing.T) {
	p := NewArgParser([]string{"--limit", "25"})

	n, err := p.FlagInt("limit")
	if err != nil {
		t.Fatalf("FlagInt(limit) error: %v", err)
	}
	if n != 25 {
		t.Errorf("FlagInt(limit) = %d, want 25", n)
	}
	if got := p.FlagIntOrDefault("missing", 7); got != 7 {
		t.Errorf("FlagIntOrDefault(missing, 7) = %d, want 7", got)
	}
}

func TestArgParserEmpty(t *testing.T) {
	p := NewArgParser(nil)

	if p.Subcommand() != "" {
		t.Errorf("Subcommand() on empty args = %q, want empty", p.Subcommand())
	}
	if p.PositionalCount() != 0 {
		t.Errorf("PositionalCount() = %d, want 0", p.PositionalCount())
	}
}

func TestJoinPositionalArgs(t *testing.T) {
	p := NewArgParser([]string{"edit", "3", "new", "prompt", "text"})

	if got := JoinPositionalArgs(p, 2); got != "new prompt text" {
		t.Errorf("JoinPositionalArgs = %q, want %q", got, "new prompt text")
	}
	if got := JoinPositionalArgs(p, 99); got != "" {
		t.Errorf("JoinPositionalArgs past end = %q, want empty", got)
	}
}

func TestWrapText(t *testing.T) {
	got := WrapText("alpha beta gamma delta", 12)
	want := "alpha beta\ngamma delta"
	if got != want {
		t.Errorf("WrapText = %q, want %q", got, want)
	}

	if got := WrapText("short", 80); got != "short" {
		t.Errorf("WrapText on short input = %q, want unchanged", got)
	}

	// The full width is usable; a line of exactly maxWidth stays whole.
	if got := WrapText("alpha beta", 10); got != "alpha beta" {
		t.Errorf("WrapText at exact width = %q, want unchanged", got)
	}
}
