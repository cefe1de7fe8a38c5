package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fostercare-aficionado/chat/internal/models"
)

type styles struct {
	title     lipgloss.Style
	subtitle  lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	timestamp lipgloss.Style
	userText  lipgloss.Style
	thinking  lipgloss.Style
	status    lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")),
		subtitle:  lipgloss.NewStyle().Faint(true),
		user:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35")),
		timestamp: lipgloss.NewStyle().Faint(true),
		userText:  lipgloss.NewStyle().PaddingLeft(2),
		thinking:  lipgloss.NewStyle().Foreground(lipgloss.Color("99")),
		status:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
}

// View renders the screen.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var status string
	switch {
	case m.snap.Busy:
		status = m.spinner.View() + m.styles.thinking.Render(" Thinking...")
	case m.status != "":
		status = m.styles.status.Render(m.status)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.styles.title.Render("Foster Care Aficionado"),
		m.styles.subtitle.Render("Research state foster care policies with AI assistance"),
		m.viewport.View(),
		"",
		status,
		m.input.View(),
	)
}

func (m Model) renderMessages() string {
	var sb strings.Builder
	for i, msg := range m.snap.Messages {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderHeader(msg))
		sb.WriteString("\n")
		sb.WriteString(m.renderBody(msg))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderHeader(msg models.Message) string {
	name := m.styles.assistant.Render("Assistant")
	if msg.Role == models.RoleUser {
		name = m.styles.user.Render("You")
	}
	return name + " " + m.styles.timestamp.Render(msg.Clock())
}

func (m Model) renderBody(msg models.Message) string {
	if msg.Role == models.RoleUser || m.renderer == nil {
		return m.styles.userText.Width(max(m.width-2, 1)).Render(msg.Content)
	}

	out, err := m.renderer.Render(msg.Content)
	if err != nil {
		return msg.Content
	}
	return strings.TrimRight(out, "\n")
}
