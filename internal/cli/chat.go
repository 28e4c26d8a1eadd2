// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command handler for the zurk CLI.
//
// Handles the "zurk chat" command: a line-oriented REPL for conversing
// with the Gemini-backed engine, with input history, slash commands,
// and streamed output.
//
// Command: chat
//
// Examples:
//   zurk chat                 Start interactive chat
//   zurk chat --mode coder    Start in coder mode
//   zurk chat -q              Minimal output
//
// Interactive Commands (during chat):
//   /new [mode]     Start a new session
//   /list           List sessions
//   /switch N       Switch to session N
//   /mode           List conversation modes
//   /persona [text] Show or set the custom persona
//   /attach FILE    Attach a text document
//   /detach         Detach the document
//   /edit N TEXT    Edit message N and resubmit
//   /export [file]  Export the session as Markdown
//   /history        Show conversation history
//   /help           Show commands
//   /quit           Exit
//   Ctrl+C          Cancel current generation

package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/ZeynTheCreator/ZurkAi/internal/config"
	"github.com/ZeynTheCreator/ZurkAi/internal/engine"
	"github.com/ZeynTheCreator/ZurkAi/internal/export"
	"github.com/ZeynTheCreator/ZurkAi/internal/model"
	"github.com/ZeynTheCreator/ZurkAi/internal/persona"
	"github.com/ZeynTheCreator/ZurkAi/internal/util"
	"github.com/ZeynTheCreator/ZurkAi/internal/ui/styles"
)

// MaxAttachmentSize caps document attachments read from disk (256KB).
const MaxAttachmentSize = 256 * 1024

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	headerStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

var (
	markdownRenderer     *glamour.TermRenderer
	markdownRendererOnce sync.Once
)

// renderMarkdown renders markdown for terminal display, falling back
// to the raw content when the renderer is unavailable.
func renderMarkdown(content string) string {
	markdownRendererOnce.Do(func() {
		markdownRenderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	})
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt. Non-empty
// input lands in history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with secure permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureConfigDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// SHELL SINK
// =============================================================================

// shellSink prints engine events to stdout. In markdown mode streamed
// chunks are buffered and rendered once finalized; otherwise chunks
// echo as they arrive.
type shellSink struct {
	markdown bool
	echoed   strings.Builder
}

func (s *shellSink) SessionChanged(*model.Session) {}
func (s *shellSink) TitleChanged(*model.Session)   {}
func (s *shellSink) StateChanged(engine.State)     {}

func (s *shellSink) MessageAppended(_ *model.Session, msg *model.Message) {
	if msg.Sender != model.SenderAssistant {
		return
	}
	if msg.IsStreaming {
		// Stream starting; chunks follow.
		s.echoed.Reset()
		return
	}
	s.printFinal(msg)
}

func (s *shellSink) StreamChunk(_ string, chunk string) {
	if s.markdown {
		return
	}
	fmt.Print(chunk)
	s.echoed.WriteString(chunk)
}

func (s *shellSink) MessageFinalized(_ *model.Session, msg *model.Message) {
	if s.markdown {
		s.printFinal(msg)
		return
	}
	// Chunks are already on screen; emit whatever finalization added,
	// such as the stop marker.
	if tail, ok := strings.CutPrefix(msg.Text, s.echoed.String()); ok && tail != "" {
		fmt.Print(tail)
	}
	fmt.Println()
	s.printReferences(msg)
	fmt.Println()
}

func (s *shellSink) printFinal(msg *model.Message) {
	if s.markdown {
		fmt.Print(renderMarkdown(msg.Text))
	} else {
		fmt.Println(msg.Text)
	}
	if msg.ImageURL != "" {
		fmt.Println(infoStyle.Render("[inline image data omitted; use /export to keep it]"))
	}
	s.printReferences(msg)
	fmt.Println()
}

func (s *shellSink) printReferences(msg *model.Message) {
	if len(msg.References) == 0 {
		return
	}
	fmt.Println(infoStyle.Render("Sources:"))
	for _, ref := range msg.References {
		title := ref.Title
		if title == "" {
			title = ref.URI
		}
		fmt.Printf("  - %s (%s)\n", title, ref.URI)
	}
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// RunChat runs the interactive REPL against the engine.
func RunChat(eng *engine.Engine, args Args) error {
	sink := &shellSink{markdown: IsStdoutTTY()}
	eng.SetSink(sink)

	if args.Mode != "" {
		mode := model.Mode(strings.ToLower(args.Mode))
		if !mode.IsValid() {
			return fmt.Errorf("unknown mode: %s (try /mode for the list)", args.Mode)
		}
		if _, err := eng.StartNewSession(mode, "", ""); err != nil {
			return err
		}
	} else {
		eng.Bootstrap()
	}

	input := NewChatCLI()
	defer input.Close()

	if !args.Quiet {
		printWelcome(eng)
	}

	// First Ctrl+C during a generation cancels it.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		for range sigChan {
			eng.CancelActive()
			fmt.Fprintln(os.Stderr, "\n"+warningStyle.Render("[Cancelled]"))
		}
	}()

	for {
		line, err := input.ReadInput(promptStyle.Render("zurk> "))
		if err != nil {
			// Ctrl+C at the prompt or EOF exits gracefully.
			fmt.Println()
			eng.WaitForTitles()
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") && !strings.HasPrefix(line, "/image ") && !strings.HasPrefix(line, "/create ") {
			keepGoing, err := handleSlashCommand(eng, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !keepGoing {
				eng.WaitForTitles()
				fmt.Println(infoStyle.Render("Goodbye!"))
				return nil
			}
			continue
		}

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			eng.WaitForTitles()
			fmt.Println(infoStyle.Render("Goodbye!"))
			return nil
		}

		fmt.Println()
		if err := eng.SubmitTurn(line, nil); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// handleSlashCommand processes slash commands. Returns (keepGoing,
// error) where keepGoing=false means exit.
func handleSlashCommand(eng *engine.Engine, cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	command := strings.ToLower(parts[0])
	rest := parts[1:]

	switch command {
	case "/help", "/h", "/?":
		printHelp()
		return true, nil

	case "/new", "/n":
		mode := model.ModeZurk
		if len(rest) > 0 {
			mode = model.Mode(strings.ToLower(rest[0]))
			if !mode.IsValid() {
				return true, fmt.Errorf("unknown mode: %s", rest[0])
			}
		}
		if _, err := eng.StartNewSession(mode, "", ""); err != nil {
			return true, err
		}
		fmt.Printf("%s %s\n",
			commandStyle.Render("[New session]"),
			persona.DisplayName(mode))
		fmt.Println(infoStyle.Render(persona.WelcomeMessage(mode)))
		return true, nil

	case "/list", "/ls":
		printSessions(eng)
		return true, nil

	case "/switch", "/s":
		if len(rest) == 0 {
			return true, fmt.Errorf("usage: /switch N")
		}
		return true, switchSession(eng, rest[0])

	case "/mode", "/modes":
		if len(rest) == 0 {
			printModes(eng)
			return true, nil
		}
		mode := model.Mode(strings.ToLower(rest[0]))
		if !mode.IsValid() {
			return true, fmt.Errorf("unknown mode: %s", rest[0])
		}
		if _, err := eng.StartNewSession(mode, "", ""); err != nil {
			return true, err
		}
		fmt.Printf("%s %s\n",
			commandStyle.Render("[Mode]"),
			persona.DisplayName(mode))
		fmt.Println(infoStyle.Render(persona.WelcomeMessage(mode)))
		return true, nil

	case "/persona":
		if len(rest) == 0 {
			current := eng.Store().CustomPersona()
			if current == "" {
				current = persona.DefaultCustomPersona
			}
			fmt.Printf("%s %s\n", infoStyle.Render("[Persona]"), current)
			return true, nil
		}
		text := strings.Join(rest, " ")
		if err := eng.SetCustomPersona(text); err != nil {
			return true, err
		}
		fmt.Println(commandStyle.Render("[Persona updated]"))
		return true, nil

	case "/attach":
		if len(rest) == 0 {
			return true, fmt.Errorf("usage: /attach FILE")
		}
		return true, attachDocument(eng, rest[0])

	case "/detach":
		if err := eng.ClearDocument(); err != nil {
			return true, err
		}
		fmt.Println(commandStyle.Render("[Document detached]"))
		return true, nil

	case "/edit", "/e":
		if len(rest) < 1 {
			return true, fmt.Errorf("usage: /edit N [new text]")
		}
		return true, editMessage(eng, rest[0], strings.Join(rest[1:], " "))

	case "/export":
		filename := ""
		if len(rest) > 0 {
			filename = rest[0]
		}
		return true, exportActive(eng, filename)

	case "/history":
		printHistory(eng)
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	case "/":
		printHelp()
		return true, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

func switchSession(eng *engine.Engine, ref string) error {
	sessions := eng.Store().Sessions()
	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 || n > len(sessions) {
		return fmt.Errorf("session %q out of range (1-%d)", ref, len(sessions))
	}
	sess := eng.LoadSession(sessions[n-1].ID)
	fmt.Printf("%s %s\n", commandStyle.Render("[Switched]"), sess.Title)
	return nil
}

func attachDocument(eng *engine.Engine, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}
	if info.Size() > MaxAttachmentSize {
		return fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), MaxAttachmentSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := eng.AttachDocument(filepath.Base(path), string(content)); err != nil {
		return err
	}
	fmt.Printf("%s %s (%d bytes); its text frames every prompt until /detach\n",
		commandStyle.Render("[Attached]"), filepath.Base(path), len(content))
	return nil
}

func editMessage(eng *engine.Engine, ref, replacement string) error {
	active := eng.Active()
	if active == nil {
		return errors.New("no active session")
	}
	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 || n > len(active.Messages) {
		return fmt.Errorf("message %q out of range (1-%d)", ref, len(active.Messages))
	}
	msg := active.Messages[n-1]
	if msg.Sender != model.SenderUser {
		return fmt.Errorf("message %d is not a user message", n)
	}
	fmt.Println()
	return eng.EditAndResubmit(msg.ID, replacement)
}

func exportActive(eng *engine.Engine, filename string) error {
	active := eng.Active()
	if active == nil {
		return errors.New("no active session")
	}
	opts := export.DefaultOptions()
	if filename != "" {
		opts.Filename = filename
	}
	path, err := export.ExportMarkdown(active, opts)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", commandStyle.Render("[Exported]"), path)
	return nil
}

// =============================================================================
// DISPLAY FUNCTIONS
// =============================================================================

func printWelcome(eng *engine.Engine) {
	active := eng.Active()

	fmt.Println()
	fmt.Println(welcomeStyle.Render("zurk interactive chat"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 30)))
	if active != nil {
		fmt.Printf("%s %s\n",
			infoStyle.Render("Session:"),
			commandStyle.Render(active.Title))
		fmt.Printf("%s %s\n",
			infoStyle.Render("Mode:"),
			commandStyle.Render(persona.DisplayName(active.Mode)))
		if len(active.Messages) == 0 {
			fmt.Println()
			fmt.Println(persona.WelcomeMessage(active.Mode))
		}
	}
	fmt.Println()
	fmt.Println(infoStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Println()
}

func printHelp() {
	fmt.Println()
	fmt.Println(headerStyle.Render("Available Commands"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()

	commands := []struct {
		cmd  string
		desc string
	}{
		{"/new [mode]", "Start a new session"},
		{"/list", "List sessions"},
		{"/switch N", "Switch to session N"},
		{"/mode [mode]", "List modes or switch to one"},
		{"/persona [text]", "Show or set the custom persona"},
		{"/attach FILE", "Attach a text document"},
		{"/detach", "Detach the document"},
		{"/edit N [text]", "Edit message N and resubmit"},
		{"/export [file]", "Export the session as Markdown"},
		{"/history", "Show conversation history"},
		{"/quit, /q", "Exit chat"},
	}
	for _, c := range commands {
		fmt.Printf("  %s  %s\n",
			commandStyle.Render(fmt.Sprintf("%-16s", c.cmd)),
			infoStyle.Render(c.desc))
	}

	fmt.Println()
	fmt.Println(infoStyle.Render("Prefix a prompt with /image to generate an image instead of text."))
	fmt.Println(infoStyle.Render("Tip: Ctrl+C cancels the current generation, Ctrl+D exits"))
	fmt.Println()
}

func printModes(eng *engine.Engine) {
	fmt.Println()
	fmt.Println(headerStyle.Render("Conversation Modes"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 20)))
	fmt.Println()
	for _, mode := range model.Modes {
		marker := " "
		if !eng.Policy().Available(mode) {
			marker = infoStyle.Render("(unavailable)")
		}
		fmt.Printf("  %s %s %s\n",
			commandStyle.Render(fmt.Sprintf("%-16s", string(mode))),
			infoStyle.Render(persona.DisplayName(mode)),
			marker)
	}
	fmt.Println()
}

func printSessions(eng *engine.Engine) {
	sessions := eng.Store().Sessions()
	if len(sessions) == 0 {
		fmt.Println(infoStyle.Render("[No sessions]"))
		return
	}

	active := eng.Active()
	fmt.Println()
	for i, sess := range sessions {
		marker := "  "
		if active != nil && sess.ID == active.ID {
			marker = commandStyle.Render("* ")
		}
		fmt.Printf("%s%2d. %-30s %-14s (%d messages)\n",
			marker, i+1,
			util.TruncateRunes(sess.Title, 30),
			persona.DisplayName(sess.Mode),
			len(sess.Messages))
	}
	fmt.Println()
}

func printHistory(eng *engine.Engine) {
	active := eng.Active()
	if active == nil || len(active.Messages) == 0 {
		fmt.Println(infoStyle.Render("[No messages yet]"))
		return
	}

	fmt.Println()
	fmt.Println(headerStyle.Render("Conversation History"))
	fmt.Println(infoStyle.Render(strings.Repeat("─", 25)))
	fmt.Println()

	for i, msg := range active.Messages {
		name := msg.Sender.DisplayName()
		switch msg.Sender {
		case model.SenderUser:
			name = lipgloss.NewStyle().Foreground(styles.Cyan).Render(name)
		case model.SenderAssistant:
			name = lipgloss.NewStyle().Foreground(styles.Purple).Render(name)
		}

		content := strings.ReplaceAll(msg.Text, "\n", " ")
		content = util.TruncateRunes(content, 100)
		fmt.Printf("  %d. %s: %s\n", i+1, name, content)
	}
	fmt.Println()
}
