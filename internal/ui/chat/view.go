// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ZeynTheCreator/ZurkAi/internal/model"
	"github.com/ZeynTheCreator/ZurkAi/internal/persona"
	"github.com/ZeynTheCreator/ZurkAi/internal/ui/components"
	"github.com/ZeynTheCreator/ZurkAi/internal/ui/styles"
	"github.com/ZeynTheCreator/ZurkAi/internal/util"
)

// View renders the full chat screen.
func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}

	header := m.renderHeader()
	body := m.viewport.View()
	if m.showSessions {
		body = m.renderSessionPicker()
	}
	input := m.renderInput()
	status := m.renderStatusBar()

	sections := []string{header, body, input, status}
	if m.statusText != "" {
		sections = append(sections, m.renderStatusLine())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("zurk")
	title := m.theme.HeaderTitle.Render(m.sessionTitle)
	mode := m.theme.HeaderSubtitle.Render(m.modeDisplayName())

	line := brand + "  " + title + "  " + mode
	return lipgloss.NewStyle().
		Width(m.width).
		Padding(1, 2, 1, 2).
		Render(line)
}

func (m Model) renderInput() string {
	prompt := m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
	if m.generating {
		thinking := m.spinner.View() + " " +
			m.theme.ThinkingText.Render("thinking") + " " +
			m.theme.ThinkingTime.Render(formatElapsed(time.Since(m.thinkingStart)))
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().PaddingLeft(2).Render(thinking))
	}
	return prompt
}

func (m Model) renderStatusBar() string {
	bar := components.NewStatusBar(m.theme)
	bar.SetWidth(m.width)
	bar.Mode = m.modeDisplayName()
	bar.Generating = m.generating
	bar.DocumentName = m.documentName
	bar.SessionIndex = m.sessionIndex
	bar.SessionCount = m.sessionCount
	return bar.View()
}

func (m Model) renderStatusLine() string {
	if m.statusIsErr {
		return m.theme.ErrorStyle.Render(styles.StatusIndicators.Error + " " + m.statusText)
	}
	return m.theme.InfoStyle.Render(styles.StatusIndicators.Info + " " + m.statusText)
}

// renderSessionPicker renders the session list in place of the transcript.
// Press a digit to switch, esc to close.
func (m Model) renderSessionPicker() string {
	var out strings.Builder
	out.WriteString(m.theme.ReferenceHeader.Render("Sessions"))
	out.WriteString("\n")

	if len(m.sessionList) == 0 {
		out.WriteString(m.theme.SessionMeta.Render("  no saved sessions"))
	}

	for i, sess := range m.sessionList {
		if i >= 9 {
			break
		}
		title := util.TruncateRunes(sess.Title, 48)
		line := fmt.Sprintf("%d. %s", i+1, m.theme.SessionTitle.Render(title))
		meta := m.theme.SessionMeta.Render(
			fmt.Sprintf("%s, %d messages", persona.DisplayName(sess.Mode), len(sess.Messages)))

		item := m.theme.SessionItem
		if sess.ID == m.sessionID {
			item = m.theme.SessionItemSelected
		}
		out.WriteString(item.Render(line + "  " + meta))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(m.theme.SessionMeta.Render("press a number to switch, esc to close"))

	picker := m.theme.SessionList.Width(m.width - 4).Render(out.String())
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.viewport.Height).
		Padding(0, 2).
		Render(picker)
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// refreshViewport re-renders the conversation into the viewport.
func (m *Model) refreshViewport(gotoBottom bool) {
	if len(m.messages) == 0 {
		welcome := components.NewWelcome(m.version, m.modeDisplayName(), m.theme)
		welcome.SetSize(m.viewport.Width, m.viewport.Height)
		m.viewport.SetContent(welcome.View())
		return
	}

	m.viewport.SetContent(m.renderMessages())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

// renderMessages renders the session transcript. User messages and
// in-flight streams render as bubbles; finalized assistant messages
// render through glamour when enabled, with a chroma code block
// fallback otherwise.
func (m *Model) renderMessages() string {
	width := m.viewport.Width
	var parts []string

	for _, msg := range m.messages {
		switch {
		case msg.Sender == model.SenderUser:
			bubble := components.NewMessageBubble(msg, m.theme)
			bubble.SetWidth(width)
			parts = append(parts, bubble.View())

		case msg.ID == m.streamingMsgID:
			display := &model.Message{
				ID:          msg.ID,
				Sender:      msg.Sender,
				Text:        m.streamText.String(),
				Timestamp:   msg.Timestamp,
				IsStreaming: true,
			}
			bubble := components.NewMessageBubble(display, m.theme)
			bubble.SetWidth(width)
			parts = append(parts, bubble.View())

		default:
			parts = append(parts, m.renderAssistantMessage(msg, width))
		}
	}

	return strings.Join(parts, "\n")
}

// renderAssistantMessage renders a finalized assistant message.
func (m *Model) renderAssistantMessage(msg *model.Message, width int) string {
	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	body := msg.Text
	if m.cfg.UI.Glamour && m.renderer != nil {
		if rendered, err := m.renderer.Render(msg.Text); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	} else {
		body = components.ParseCodeBlocks(body, width)
		body = components.ParseInlineCode(body)
	}

	out := lipgloss.JoinVertical(lipgloss.Left, roleStyle.Render("zurk"), body)

	if msg.ImageURL != "" {
		note := lipgloss.NewStyle().
			Foreground(styles.Amber).
			Italic(true).
			PaddingLeft(2).
			Render("[image generated; export the chat to keep it]")
		out = lipgloss.JoinVertical(lipgloss.Left, out, note)
	}

	if len(msg.References) > 0 {
		out = lipgloss.JoinVertical(lipgloss.Left, out, m.renderReferences(msg.References))
	}

	return out
}

// renderReferences renders grounding sources under a message.
func (m *Model) renderReferences(refs []model.GroundingReference) string {
	var out strings.Builder
	out.WriteString(m.theme.ReferenceHeader.Render("Sources"))
	for _, ref := range refs {
		title := ref.Title
		if title == "" {
			title = ref.URI
		}
		out.WriteString("\n  ")
		out.WriteString(m.theme.ReferenceTitle.Render(title))
		out.WriteString(" ")
		out.WriteString(m.theme.ReferenceURI.Render(ref.URI))
	}
	return out.String()
}

// formatElapsed renders a short elapsed-time label.
func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	return d.Round(time.Second).String()
}
