// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package persona

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ZeynTheCreator/ZurkAi/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrModeUnavailable means the mode cannot be used right now, e.g.
	// developer mode without a source snapshot.
	ErrModeUnavailable = errors.New("mode unavailable")

	// ErrUnknownMode means the mode is not part of the enumeration.
	ErrUnknownMode = errors.New("unknown mode")
)

// =============================================================================
// DIRECTIVE
// =============================================================================

// Directive is what a resolved mode contributes to a conversation
// handle: either a system instruction or the web-search tool flag,
// never both.
type Directive struct {
	SystemInstruction string
	UseWebSearch      bool
}

// =============================================================================
// POLICY
// =============================================================================

// Policy resolves modes to directives. The developer instruction is
// assembled once at construction from a source snapshot file; when the
// snapshot is unavailable, developer mode is reported unavailable
// rather than resolved with an incomplete instruction.
type Policy struct {
	developerInstruction string
}

// New builds a Policy, loading the developer source snapshot from
// snapshotPath. An empty path or unreadable file disables developer
// mode and is not an error.
func New(snapshotPath string) *Policy {
	p := &Policy{}
	if snapshotPath == "" {
		return p
	}
	data, err := os.ReadFile(snapshotPath)
	if err != nil || len(data) == 0 {
		return p
	}
	p.developerInstruction = developerTemplate + string(data)
	return p
}

// Available reports whether a mode can currently be used.
func (p *Policy) Available(mode model.Mode) bool {
	if !mode.IsValid() {
		return false
	}
	if mode == model.ModeDeveloper {
		return p.developerInstruction != ""
	}
	return true
}

// Resolve maps a mode (and, for custom mode, the session's persona
// text) to the directive used when opening a conversation handle.
func (p *Policy) Resolve(mode model.Mode, customPersona string) (Directive, error) {
	switch {
	case !mode.IsValid():
		return Directive{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	case mode == model.ModeWebSearch:
		return Directive{UseWebSearch: true}, nil
	case mode == model.ModeCustom:
		instruction := strings.TrimSpace(customPersona)
		if instruction == "" {
			instruction = DefaultCustomPersona
		}
		return Directive{SystemInstruction: instruction}, nil
	case mode == model.ModeDeveloper:
		if p.developerInstruction == "" {
			return Directive{}, fmt.Errorf("%w: developer mode needs a source snapshot", ErrModeUnavailable)
		}
		return Directive{SystemInstruction: p.developerInstruction}, nil
	default:
		return Directive{SystemInstruction: instructions[mode]}, nil
	}
}

// =============================================================================
// HELPERS
// =============================================================================

var titleCaser = cases.Title(language.English)

// DisplayName returns a human-friendly label for a mode.
func DisplayName(mode model.Mode) string {
	switch mode {
	case model.ModeZurk:
		return "ZurkAI"
	case model.ModeDeveloper:
		return "Zurk Developer"
	case model.ModeWebSearch:
		return "Web Search"
	case model.ModeGod:
		return "God-Tier"
	default:
		return titleCaser.String(string(mode))
	}
}

// createPrefix marks a god-mode creation petition.
const createPrefix = "/create "

// RewriteGodCreate rewrites a god-mode "/create <subject>" prompt into
// the deity-narration form. Other prompts pass through unchanged.
func RewriteGodCreate(mode model.Mode, prompt string) string {
	if mode != model.ModeGod {
		return prompt
	}
	if !strings.HasPrefix(strings.ToLower(prompt), createPrefix) {
		return prompt
	}
	subject := prompt[len(createPrefix):]
	return fmt.Sprintf(`As a primordial deity, narrate the act of creation for the following subject, in the first person: %q. Be majestic, creative, and descriptive.`, subject)
}
