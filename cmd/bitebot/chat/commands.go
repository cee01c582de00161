// Package chat provides the interactive TUI chat client for BiteBot.
// This file contains slash command dispatch.
package chat

import (
	"strings"

	"bitebot/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// COMMAND HANDLING
// =============================================================================

// handleCommand dispatches a slash command. Commands never reach the
// server; anything unrecognized is left in the input so a typo can be
// fixed instead of being sent as a message.
func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	command := fields[0]

	switch command {
	case "/help", "/?":
		m.textarea.Reset()
		m.viewMode = HelpView
		return m, nil

	case "/reset":
		m.textarea.Reset()
		return m.beginReset()

	case "/quit", "/exit", "/q":
		m.Shutdown()
		return m, tea.Quit
	}

	logging.Session("unknown command: %s", command)
	return m, nil
}
