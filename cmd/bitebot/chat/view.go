// Package chat provides the interactive TUI chat client for BiteBot.
// This file contains view rendering: the transcript projection, header,
// footer, and the blocking dialog screens.
package chat

import (
	"fmt"
	"strings"

	"bitebot/cmd/bitebot/ui"
	"bitebot/internal/markup"
	"bitebot/internal/session"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript projects the session transcript into styled text. It is
// a pure function of the model, so calling it again after any state change
// yields the same output for the same state.
func (m Model) renderTranscript() string {
	var sb strings.Builder

	for _, entry := range m.state.Transcript {
		switch {
		case entry.Pending:
			sb.WriteString(m.agentLabel() + "\n")
			sb.WriteString(m.styles.Muted.Render(m.spinner.View() + " Waiting for BiteBot..."))
			sb.WriteString("\n")

		case entry.Role == session.RoleUser:
			userStyle := m.styles.Bold.
				Foreground(m.styles.Theme.Primary).
				MarginTop(1)
			sb.WriteString(userStyle.Render("You") + "\n")
			sb.WriteString(m.styles.UserInput.Render(entry.Content))
			sb.WriteString("\n")

		default: // assistant
			sb.WriteString(m.agentLabel() + "\n")
			sb.WriteString(m.styles.AgentResponse.Render(markup.Render(entry.Content)))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func (m Model) agentLabel() string {
	return m.styles.Bold.
		Foreground(m.styles.Theme.Accent).
		MarginTop(1).
		Render("BiteBot")
}

// =============================================================================
// TOP-LEVEL VIEW
// =============================================================================

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	switch m.viewMode {
	case ConfirmResetView:
		return m.renderConfirmReset()
	case ResetFailedView:
		return m.renderResetFailed()
	case HelpView:
		return m.renderHelp()
	}

	header := m.renderHeader()

	chatView := m.viewport.View()
	if m.width >= minWidthForPanel {
		panel := ui.RenderReservationPanel(m.styles, m.state.Reservations, reservationPanelWidth)
		chatView = lipgloss.JoinHorizontal(lipgloss.Top, chatView, "  ", panel)
	}

	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Accent).
		Padding(0, 1)
	inputArea := inputStyle.Render(m.textarea.View())

	footer := m.renderFooter()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		chatView,
		inputArea,
		footer,
	)
}

func (m Model) renderHeader() string {
	title := m.styles.Header.Render(" BiteBot ")
	version := m.styles.Badge.Render("v1.0")

	var status string
	if m.state.InFlight() {
		spin := m.spinner.View()
		label := "Waiting for BiteBot..."
		if m.state.Phase == session.PhaseResetting {
			label = "Resetting..."
		}
		status = lipgloss.JoinHorizontal(lipgloss.Center, spin, " ", m.styles.Badge.Render(label))
	} else {
		status = m.renderServerStatus()
	}

	headerLine := lipgloss.JoinHorizontal(
		lipgloss.Center,
		title,
		" ",
		version,
		"  ",
		status,
	)

	server := m.styles.Muted.Render(" " + m.cfg.Server.BaseURL)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		headerLine,
		server,
		m.styles.RenderDivider(m.width),
	)
}

func (m Model) renderServerStatus() string {
	switch m.serverStatus {
	case serverReady:
		return m.styles.Success.Render("Ready")
	case serverDegraded:
		return m.styles.Warning.Render("Degraded")
	case serverOffline:
		return m.styles.Error.Render("Offline")
	}
	return m.styles.Muted.Render("Connecting...")
}

func (m Model) renderFooter() string {
	hotkeys := "Enter: send | Alt+Enter: newline | Ctrl+R: reset | /help | Ctrl+C: exit"
	if m.width < minWidthForPanel {
		hotkeys += fmt.Sprintf(" | Reservations: %d", len(m.state.Reservations))
	}
	return lipgloss.NewStyle().
		MarginTop(1).
		Render(m.styles.Muted.Render(hotkeys))
}

// =============================================================================
// DIALOG SCREENS
// =============================================================================

func (m Model) renderConfirmReset() string {
	title := m.styles.Title.Render("Start over?")
	body := m.styles.Body.Render("This clears the conversation and the reservations panel.")
	hint := m.styles.Muted.Render("y/Enter: reset    n/Esc: keep everything")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.Theme.Primary).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderResetFailed() string {
	title := m.styles.Error.Render("Reset failed")
	body := m.styles.Body.Render(resetFailedText + "\nYour conversation was left untouched.")
	hint := m.styles.Muted.Render("Press any key to continue")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.Destructive).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m Model) renderHelp() string {
	content := m.safeRenderMarkdown(helpCommandText)
	hint := m.styles.Muted.Render("Press any key to return")
	return lipgloss.JoinVertical(lipgloss.Left, content, hint)
}

// safeRenderMarkdown renders markdown with panic recovery
func (m Model) safeRenderMarkdown(content string) (result string) {
	defer func() {
		if r := recover(); r != nil {
			// If glamour panics, return plain text
			result = content
		}
	}()

	if m.renderer != nil && content != "" {
		rendered, err := m.renderer.Render(content)
		if err == nil {
			return rendered
		}
	}
	return content
}
