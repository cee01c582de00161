// Package chat provides the interactive TUI chat client for BiteBot.
// This file contains the background commands that talk to the server.
// Each returns a tea.Cmd closure; m is a value copy, so reading its fields
// inside the goroutine is safe.
package chat

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// bootFetchTimeout bounds the session-start reservation fetch and health
// probe. Shorter than the chat timeout: these are smoke tests, not
// conversations.
const bootFetchTimeout = 10 * time.Second

// sendMessage posts the user's text to the server and reports the outcome.
// Every resolved response, including backend-reported errors, comes back as
// chatReplyMsg; only transport failures become chatFailedMsg.
func (m Model) sendMessage(text string) tea.Cmd {
	return func() tea.Msg {
		// Guard: fail gracefully if the client was never wired
		if m.client == nil {
			return chatFailedMsg{err: fmt.Errorf("backend client not initialized")}
		}

		ctx, cancel := context.WithTimeout(m.shutdownCtx, m.cfg.GetServerTimeout())
		defer cancel()

		resp, err := m.client.Chat(ctx, text)
		if err != nil {
			return chatFailedMsg{err: err}
		}
		return chatReplyMsg{resp: resp}
	}
}

// loadReservations fetches the reservation list once at session start.
func (m Model) loadReservations() tea.Cmd {
	return func() tea.Msg {
		if m.client == nil {
			return reservationsLoadedMsg{err: fmt.Errorf("backend client not initialized")}
		}

		ctx, cancel := context.WithTimeout(m.shutdownCtx, bootFetchTimeout)
		defer cancel()

		list, err := m.client.FetchReservations(ctx)
		return reservationsLoadedMsg{reservations: list, err: err}
	}
}

// checkServer probes the health endpoint so the header can show
// reachability before the first message goes out.
func (m Model) checkServer() tea.Cmd {
	return func() tea.Msg {
		if m.client == nil {
			return serverStatusMsg{err: fmt.Errorf("backend client not initialized")}
		}

		ctx, cancel := context.WithTimeout(m.shutdownCtx, bootFetchTimeout)
		defer cancel()

		status, err := m.client.Health(ctx)
		return serverStatusMsg{status: status, err: err}
	}
}

// performReset asks the server to drop the conversation. Any resolved
// response counts as success; the error is non-nil only when the request
// never reached the server.
func (m Model) performReset() tea.Cmd {
	return func() tea.Msg {
		if m.client == nil {
			return resetDoneMsg{err: fmt.Errorf("backend client not initialized")}
		}

		ctx, cancel := context.WithTimeout(m.shutdownCtx, m.cfg.GetServerTimeout())
		defer cancel()

		return resetDoneMsg{err: m.client.Reset(ctx)}
	}
}
