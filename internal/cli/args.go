// args.go - Unified argument parsing for all CLI commands in zurk.
//
// Every subcommand parses its arguments through ArgParser so flags,
// subcommands, and positional values behave the same everywhere.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits raw command-line arguments into flags and positionals.
// It accepts these flag forms:
//
//	--flag value     value in the next argument
//	--flag=value     value after an equals sign
//	-f value         short form
//	--flag           boolean, no value
//
// The first positional argument is the subcommand.
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw arguments.
//
// Example:
//
//	args := NewArgParser([]string{"export", "--output", "chat.md", "--stdout"})
//	args.Subcommand()        // "export"
//	args.Flag("output")      // "chat.md"
//	args.BoolFlag("stdout")  // true
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:      make(map[string]string),
		boolFlags:  make(map[string]bool),
		positional: make([]string, 0),
	}
	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			p.positional = append(p.positional, arg)
			continue
		}
		if name, value, ok := strings.Cut(arg, "="); ok {
			p.setFlag(strings.TrimLeft(name, "-"), value)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			p.flags[name] = raw[i+1]
			i++
		} else {
			p.boolFlags[name] = true
		}
	}
	return p
}

// setFlag stores an explicit --name=value pair. Literal true/false values
// land in the boolean set so --json=false actually disables the flag.
func (p *ArgParser) setFlag(name, value string) {
	switch value {
	case "true", "false":
		p.boolFlags[name] = value == "true"
	default:
		p.flags[name] = value
	}
}

// Subcommand returns the first positional argument, or empty string.
func (p *ArgParser) Subcommand() string {
	return p.Positional(0)
}

// Flag returns the value of a string flag, or empty string.
func (p *ArgParser) Flag(name string) string {
	return p.flags[strings.TrimLeft(name, "-")]
}

// FlagOrDefault returns the flag value or a default if not set.
func (p *ArgParser) FlagOrDefault(name, fallback string) string {
	if v := p.Flag(name); v != "" {
		return v
	}
	return fallback
}

// FlagInt returns the flag value as an integer.
func (p *ArgParser) FlagInt(name string) (int, error) {
	v := p.Flag(name)
	if v == "" {
		return 0, fmt.Errorf("flag %s not found", name)
	}
	return strconv.Atoi(v)
}

// FlagIntOrDefault returns the flag value as an integer or a default.
func (p *ArgParser) FlagIntOrDefault(name string, fallback int) int {
	v, err := p.FlagInt(name)
	if err != nil {
		return fallback
	}
	return v
}

// BoolFlag returns the value of a boolean flag, or false.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[strings.TrimLeft(name, "-")]
}

// Positional returns the positional argument at index, or empty string.
// Index 0 is the subcommand.
func (p *ArgParser) Positional(index int) string {
	if index < 0 || index >= len(p.positional) {
		return ""
	}
	return p.positional[index]
}

// PositionalFrom returns all positional arguments starting from index.
func (p *ArgParser) PositionalFrom(index int) []string {
	if index < 0 || index >= len(p.positional) {
		return []string{}
	}
	return p.positional[index:]
}

// PositionalCount returns the number of positional arguments.
func (p *ArgParser) PositionalCount() int {
	return len(p.positional)
}

// JoinPositionalArgs joins positional arguments from startIndex into one
// string, for multi-word prompts.
func JoinPositionalArgs(parser *ArgParser, startIndex int) string {
	return strings.Join(parser.PositionalFrom(startIndex), " ")
}
