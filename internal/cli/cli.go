// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command handlers for zurk.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/ZeynTheCreator/ZurkAi/internal/config"
	"github.com/ZeynTheCreator/ZurkAi/internal/export"
	"github.com/ZeynTheCreator/ZurkAi/internal/model"
	"github.com/ZeynTheCreator/ZurkAi/internal/persona"
	"github.com/ZeynTheCreator/ZurkAi/internal/storage"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool

	// Command-specific
	Mode       string // conversation mode for chat (--mode coder)
	SessionID  string // session id for export
	Output     string // output path for export
	ConfigKey  string
	ConfigVal  string
	Subcommand string

	// Raw args remaining after flag parsing
	Raw []string
}

const usageText = `zurk - Gemini-powered terminal chat client

Zurk is a multi-persona AI chat client for the terminal, backed by the
Gemini API. Sessions persist locally and can be exported as Markdown.

Usage:
  zurk                      Start TUI (default)
  zurk chat                 Line-oriented chat REPL
    --mode NAME             Start in a specific conversation mode
    -q, --quiet             Minimal output
  zurk export [id]          Export a session as Markdown (active session by default)
    --output FILE           Write to FILE instead of the generated name
    --stdout                Write to stdout instead of a file
    --list                  List sessions with their ids
  zurk config [show|get|set|path]
                            Configuration management
  zurk version, -v          Show version
  zurk help, -h             Show this help

Config Commands:
  zurk config show          Show the effective configuration
  zurk config get KEY       Get a value (dot notation, e.g. storage.backend)
  zurk config set KEY VALUE Set a value and save
  zurk config path          Print the config file path

Conversation Modes:
  zurk, thinker, coder, news, fitness, study, creative, simulator,
  emotional, god, custom, web-search, zurk-developer

Environment:
  ZURK_API_KEY / GEMINI_API_KEY   Gemini API key
  ZURK_MODEL                      Override the chat model
  ZURK_STORAGE_DIR                Override the session storage directory
  ZURK_STORAGE_BACKEND            "file" or "sqlite"
  ZURK_DEBUG                      Write TUI debug log to zurk-debug.log
  NO_COLOR                        Disable colored output

Interactive Commands (during chat):
  /new [mode]     Start a new session
  /list           List sessions
  /switch N       Switch to session N
  /mode [mode]    List modes or switch to one
  /persona [text] Show or set the custom persona
  /attach FILE    Attach a text document to the session
  /detach         Detach the document
  /edit N TEXT    Edit message N and resubmit
  /export [file]  Export the session as Markdown
  /history        Show conversation history
  /help           Show commands
  /quit           Exit
  Ctrl+C          Cancel current generation
`

// Parse parses os.Args into a command and its arguments.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsedArgs := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "chat":
		parseChatArgs(&parsedArgs, remaining)
		return CmdChat, parsedArgs

	case "export":
		parseExportArgs(&parsedArgs, remaining)
		return CmdExport, parsedArgs

	case "config":
		parseConfigArgs(&parsedArgs, remaining)
		return CmdConfig, parsedArgs

	case "version", "--version", "-v":
		return CmdVersion, parsedArgs

	case "help", "--help", "-h":
		return CmdHelp, parsedArgs

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, parsedArgs
	}
}

// parseGlobalFlags extracts flags valid for every command.
func parseGlobalFlags(args []string) ([]string, Args) {
	var parsed Args
	remaining := make([]string, 0, len(args))

	for _, arg := range args {
		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, parsed
}

func parseChatArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	args.Mode = parser.FlagOrDefault("mode", parser.Flag("m"))
}

func parseExportArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	args.SessionID = parser.Positional(0)
	args.Output = parser.FlagOrDefault("output", parser.Flag("o"))
	if parser.BoolFlag("list") {
		args.Subcommand = "list"
	} else if parser.BoolFlag("stdout") {
		args.Subcommand = "stdout"
	}
}

func parseConfigArgs(args *Args, remaining []string) {
	parser := NewArgParser(remaining)
	args.Subcommand = parser.Subcommand()
	args.ConfigKey = parser.Positional(1)
	args.ConfigVal = parser.Positional(2)
}

// =============================================================================
// COMMAND HANDLERS
// =============================================================================

// PrintUsage prints the usage text.
func PrintUsage() {
	fmt.Print(usageText)
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}

// HandleVersion handles the "version" command.
func HandleVersion(args Args) {
	if args.JSON {
		data := map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
			"go_version": runtime.Version(),
		}
		out, _ := json.MarshalIndent(data, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Printf("zurk %s (commit %s, built %s, %s)\n",
		Version, GitCommit, BuildDate, runtime.Version())
}

// HandleConfigCommand handles "config" subcommands.
func HandleConfigCommand(args Args) error {
	cfg := config.Global()

	switch args.Subcommand {
	case "", "show":
		fmt.Println(cfg.String())
		return nil

	case "get":
		if args.ConfigKey == "" {
			return fmt.Errorf("usage: zurk config get KEY")
		}
		val, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return err
		}
		fmt.Println(val)
		return nil

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return fmt.Errorf("usage: zurk config set KEY VALUE")
		}
		if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid value: %w", err)
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("%s = %s\n", args.ConfigKey, args.ConfigVal)
		return nil

	case "path":
		path, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil

	case "keys":
		for _, key := range config.GetAllKeys() {
			fmt.Println(key)
		}
		return nil

	default:
		return fmt.Errorf("unknown config subcommand: %s (try show, get, set, path)", args.Subcommand)
	}
}

// HandleExportCommand handles the "export" command against the session
// store. With no id it exports the active session.
func HandleExportCommand(store *storage.Store, args Args) error {
	if args.Subcommand == "list" {
		return listSessionsForExport(store)
	}

	sess, err := resolveSession(store, args.SessionID)
	if err != nil {
		return err
	}

	if args.Subcommand == "stdout" {
		content, err := export.NewMarkdownExporter().Export(sess)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(content)
		return err
	}

	opts := export.DefaultOptions()
	if args.Output != "" {
		opts.OutputDir = "."
		opts.Filename = args.Output
	}
	path, err := export.ExportMarkdown(sess, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

// resolveSession finds a session by id prefix, list index, or falls
// back to the active session.
func resolveSession(store *storage.Store, ref string) (*model.Session, error) {
	sessions := store.Sessions()
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions to export")
	}

	if ref == "" {
		if id := store.ActiveID(); id != "" {
			if sess, err := store.Get(id); err == nil {
				return sess, nil
			}
		}
		return sessions[0], nil
	}

	// Numeric refs index the session list, 1-based.
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(sessions) {
			return nil, fmt.Errorf("session %d out of range (1-%d)", n, len(sessions))
		}
		return sessions[n-1], nil
	}

	for _, sess := range sessions {
		if sess.ID == ref || strings.HasPrefix(sess.ID, ref) {
			return sess, nil
		}
	}
	return nil, fmt.Errorf("no session matching %q", ref)
}

// listSessionsForExport prints sessions with ids and indices.
func listSessionsForExport(store *storage.Store) error {
	sessions := store.Sessions()
	if len(sessions) == 0 {
		fmt.Println("No sessions.")
		return nil
	}

	activeID := store.ActiveID()
	for i, sess := range sessions {
		marker := " "
		if sess.ID == activeID {
			marker = "*"
		}
		fmt.Printf("%s %2d. %-30s %-14s %s (%d messages)\n",
			marker, i+1,
			sess.Title,
			persona.DisplayName(sess.Mode),
			shortID(sess.ID),
			len(sess.Messages))
	}
	return nil
}

// shortID abbreviates a session id for display. Hand-edited store
// files can carry ids shorter than the usual uuid.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
