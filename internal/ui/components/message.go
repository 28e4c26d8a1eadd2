// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ZeynTheCreator/ZurkAi/internal/model"
	"github.com/ZeynTheCreator/ZurkAi/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders one chat message as a styled bubble.
type MessageBubble struct {
	Message       *model.Message
	Width         int
	IsLatest      bool
	ShowTimestamp bool
	Streaming     bool
	theme         *styles.Theme
}

// NewMessageBubble creates a new MessageBubble.
func NewMessageBubble(msg *model.Message, theme *styles.Theme) *MessageBubble {
	if msg == nil {
		return &MessageBubble{
			Message: &model.Message{Sender: model.SenderAssistant},
			Width:   80,
			theme:   theme,
		}
	}
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		Streaming:     msg.IsStreaming,
		theme:         theme,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// SetIsLatest marks this as the latest message.
func (b *MessageBubble) SetIsLatest(latest bool) {
	b.IsLatest = latest
}

// View renders the message bubble.
func (b *MessageBubble) View() string {
	if b.Message.Sender == model.SenderUser {
		return b.renderUserBubble()
	}
	return b.renderAssistantBubble()
}

// ==========================================================================
// USER BUBBLE - Blue tones, right-aligned feel
// ==========================================================================

func (b *MessageBubble) renderUserBubble() string {
	content := b.Message.Text
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-8)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.UserBubbleFg).
		Background(styles.UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.UserBubbleBorder).
		Padding(0, 2).
		Width(contentWidth)

	bubble := bubbleStyle.Render(wrappedContent)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := roleStyle.Render("you")
	if ts := b.renderTimestamp(); ts != "" {
		header += " " + ts
	}

	// Right-align the bubble with a left margin.
	leftMargin := b.Width - contentWidth - 4
	if leftMargin < 0 {
		leftMargin = 0
	}
	marginStyle := lipgloss.NewStyle().MarginLeft(leftMargin)

	return lipgloss.JoinVertical(lipgloss.Right,
		marginStyle.Render(header),
		marginStyle.Render(bubble))
}

// ==========================================================================
// ASSISTANT BUBBLE - Purple/violet tones, left-aligned
// ==========================================================================

func (b *MessageBubble) renderAssistantBubble() string {
	content := b.Message.Text
	if b.Streaming {
		content += b.renderStreamingCursor()
	}
	if content == "" {
		content = "..."
	}

	maxContentWidth := b.Width - 12
	if maxContentWidth < 20 {
		maxContentWidth = 20
	}
	wrappedContent := wordWrap(content, maxContentWidth)
	contentWidth := minInt(maxLineWidth(wrappedContent)+4, b.Width-8)

	bubbleStyle := lipgloss.NewStyle().
		Foreground(styles.AssistantBubbleFg).
		Background(styles.AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.AssistantBubbleBorder).
		Padding(0, 2).
		Width(contentWidth).
		MarginRight(4)

	bubble := bubbleStyle.Render(wrappedContent)

	roleStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)
	header := roleStyle.Render("zurk")
	if ts := b.renderTimestamp(); ts != "" {
		header += " " + ts
	}

	result := lipgloss.JoinVertical(lipgloss.Left, header, bubble)

	if b.Message.ImageURL != "" {
		result = lipgloss.JoinVertical(lipgloss.Left, result, b.renderImageNote())
	}
	if len(b.Message.References) > 0 {
		result = lipgloss.JoinVertical(lipgloss.Left, result, b.renderReferences())
	}

	return result
}

// renderImageNote marks messages that carry generated image data, which
// the terminal cannot display inline.
func (b *MessageBubble) renderImageNote() string {
	noteStyle := lipgloss.NewStyle().
		Foreground(styles.Amber).
		Italic(true).
		PaddingLeft(2)
	return noteStyle.Render("[image generated; export the chat to keep it]")
}

// renderReferences renders the grounding sources under the bubble.
func (b *MessageBubble) renderReferences() string {
	headerStyle := lipgloss.NewStyle().
		Foreground(styles.Emerald).
		Bold(true).
		PaddingLeft(2)
	itemStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		PaddingLeft(4)
	uriStyle := lipgloss.NewStyle().
		Foreground(styles.LinkColor).
		Underline(true)

	var out strings.Builder
	out.WriteString(headerStyle.Render("Sources"))
	for _, ref := range b.Message.References {
		title := ref.Title
		if title == "" {
			title = ref.URI
		}
		out.WriteString("\n")
		out.WriteString(itemStyle.Render(title + " " + uriStyle.Render(ref.URI)))
	}
	return out.String()
}

// ==========================================================================
// HELPER METHODS
// ==========================================================================

// renderTimestamp renders a dimmed timestamp.
func (b *MessageBubble) renderTimestamp() string {
	if !b.ShowTimestamp {
		return ""
	}
	ts := b.Message.Timestamp
	if ts.IsZero() {
		return ""
	}

	timestampStyle := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true)

	now := time.Now()
	if ts.Year() == now.Year() && ts.YearDay() == now.YearDay() {
		return timestampStyle.Render(ts.Format("3:04 PM"))
	}
	return timestampStyle.Render(ts.Format("Jan 2, 3:04 PM"))
}

// renderStreamingCursor renders the streaming cursor.
func (b *MessageBubble) renderStreamingCursor() string {
	cursorStyle := lipgloss.NewStyle().
		Foreground(styles.Purple).
		Blink(true)
	return cursorStyle.Render("_")
}

// =============================================================================
// MESSAGE LIST COMPONENT
// =============================================================================

// MessageList renders a session's messages as a bubble column.
type MessageList struct {
	Messages       []*model.Message
	Width          int
	ShowTimestamps bool
	theme          *styles.Theme
}

// NewMessageList creates a new MessageList.
func NewMessageList(theme *styles.Theme) *MessageList {
	return &MessageList{
		Messages:       []*model.Message{},
		Width:          80,
		ShowTimestamps: true,
		theme:          theme,
	}
}

// SetMessages sets the messages to display.
func (ml *MessageList) SetMessages(messages []*model.Message) {
	ml.Messages = messages
}

// SetWidth sets the list width.
func (ml *MessageList) SetWidth(width int) {
	ml.Width = width
}

// View renders all messages.
func (ml *MessageList) View() string {
	if len(ml.Messages) == 0 {
		emptyStyle := lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Italic(true).
			Width(ml.Width).
			Align(lipgloss.Center).
			Padding(2, 0)
		return emptyStyle.Render("No messages yet. Start a conversation!")
	}

	var bubbles []string
	for i, msg := range ml.Messages {
		bubble := NewMessageBubble(msg, ml.theme)
		bubble.SetWidth(ml.Width)
		bubble.ShowTimestamp = ml.ShowTimestamps
		bubble.SetIsLatest(i == len(ml.Messages)-1)
		bubbles = append(bubbles, bubble.View())
	}

	return strings.Join(bubbles, "\n")
}
