// Package chat provides the interactive TUI chat client for BiteBot.
// This file contains the Bubble Tea model, message types, and the update
// loop that drives every state transition.
package chat

import (
	"context"
	"strings"
	"sync"

	"bitebot/cmd/bitebot/ui"
	"bitebot/internal/api"
	"bitebot/internal/config"
	"bitebot/internal/logging"
	"bitebot/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// VIEW MODES
// =============================================================================

// ViewMode selects which top-level screen View renders.
type ViewMode int

const (
	// ChatView is the default transcript + input screen.
	ChatView ViewMode = iota
	// ConfirmResetView blocks all other input until the user confirms or
	// declines clearing the conversation.
	ConfirmResetView
	// ResetFailedView blocks until the user acknowledges that the reset
	// request never reached the server. The conversation stays intact.
	ResetFailedView
	// HelpView shows the command and keyboard reference.
	HelpView
)

// =============================================================================
// FIXED STRINGS
// =============================================================================

const (
	// transportFailureText is appended to the transcript when a /chat
	// request fails before producing any response.
	transportFailureText = "Unable to reach the server. Please try again."

	// resetFailedText is the blocking notice shown when POST /reset never
	// resolved. Shown in ResetFailedView, never in the transcript.
	resetFailedText = "Reset failed: could not reach the server."
)

// Server reachability values for the header indicator.
const (
	serverReady    = "ready"
	serverDegraded = "degraded"
	serverOffline  = "offline"
)

// Reservations panel layout. Below minWidthForPanel the panel is hidden
// and the footer shows a count instead.
const (
	reservationPanelWidth = 34
	minWidthForPanel      = 100
)

// =============================================================================
// MESSAGES
// =============================================================================
// Internal tea.Msg types produced by the background commands in process.go.

type (
	// chatReplyMsg carries any resolved /chat response, success and
	// backend-reported error alike.
	chatReplyMsg struct {
		resp *api.ChatResponse
	}

	// chatFailedMsg means the request never produced a usable response.
	chatFailedMsg struct {
		err error
	}

	// reservationsLoadedMsg carries the session-start reservation fetch.
	reservationsLoadedMsg struct {
		reservations []session.Reservation
		err          error
	}

	// serverStatusMsg carries the boot-time health probe result.
	serverStatusMsg struct {
		status *api.HealthStatus
		err    error
	}

	// resetDoneMsg reports whether POST /reset resolved at all. The
	// response body is irrelevant; only transport failures carry an error.
	resetDoneMsg struct {
		err error
	}

	// windowSizeMsg is a local alias so resize handling can be re-entered.
	windowSizeMsg tea.WindowSizeMsg
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the top-level Bubble Tea model for the chat client.
type Model struct {
	// UI components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   ui.Styles
	renderer *glamour.TermRenderer

	// Conversation state. Every transcript and reservation transition goes
	// through internal/session so the in-flight guard lives in one place.
	state session.State

	// Backend access
	client api.Backend
	cfg    *config.Config

	// Server reachability shown in the header: serverReady, serverDegraded,
	// serverOffline, or "" while the first probe is still out.
	serverStatus string

	// Layout
	width  int
	height int
	ready  bool

	viewMode ViewMode

	// Input history for Up/Down recall
	inputHistory []string
	historyIndex int

	sessionID string

	// Shutdown coordination
	shutdownOnce   *sync.Once
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// Init starts the cursor blink, the spinner, and the two boot fetches:
// the reservation list and the health probe.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		tea.EnableMouseCellMotion,
		m.loadReservations(),
		m.checkServer(),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings
		switch msg.Type {
		case tea.KeyCtrlC:
			m.Shutdown()
			return m, tea.Quit
		}

		// Modal views swallow every key until dismissed.
		switch m.viewMode {
		case ConfirmResetView:
			return m.handleConfirmResetKey(msg)
		case ResetFailedView:
			// Any key acknowledges the failure notice.
			m.viewMode = ChatView
			return m, nil
		case HelpView:
			m.viewMode = ChatView
			return m, nil
		}

		// Chat view handling
		switch msg.Type {
		case tea.KeyEsc:
			m.Shutdown()
			return m, tea.Quit

		case tea.KeyCtrlR:
			return m.beginReset()

		case tea.KeyEnter:
			// Allow Alt+Enter for newlines
			if msg.Alt {
				// Let textarea handle it
				break
			}

			// Enter sends the message if nothing is in flight
			if !m.state.InFlight() {
				return m.handleSubmit()
			}
			return m, nil

		case tea.KeyUp:
			// History previous (if at top line)
			if m.textarea.Line() == 0 {
				if m.historyIndex > 0 {
					m.historyIndex--
					m.textarea.SetValue(m.inputHistory[m.historyIndex])
					m.textarea.CursorEnd()
				}
				return m, nil
			}

		case tea.KeyDown:
			// History next (if at bottom line)
			if m.textarea.Line() == m.textarea.LineCount()-1 {
				if m.historyIndex < len(m.inputHistory) {
					m.historyIndex++
					if m.historyIndex == len(m.inputHistory) {
						m.textarea.SetValue("")
					} else {
						m.textarea.SetValue(m.inputHistory[m.historyIndex])
						m.textarea.CursorEnd()
					}
				}
				return m, nil
			}
		}

		// Handle regular key input
		if !m.state.InFlight() {
			m.textarea, tiCmd = m.textarea.Update(msg)
		}

	case windowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		footerHeight := 3
		inputHeight := 3
		paddingHeight := 2

		// The reservation panel sits right of the chat when the terminal
		// is wide enough; otherwise the chat takes the full width.
		chatWidth := msg.Width - 4
		if msg.Width >= minWidthForPanel {
			chatWidth = msg.Width - reservationPanelWidth - 6
		}
		if chatWidth < 1 {
			chatWidth = 1
		}

		calcHeight := msg.Height - headerHeight - footerHeight - inputHeight - paddingHeight
		if calcHeight < 1 {
			calcHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(chatWidth, calcHeight)
			m.ready = true
		} else {
			m.viewport.Width = chatWidth
			m.viewport.Height = calcHeight
		}

		// Reduce input width to accommodate border (2) + padding (2)
		m.textarea.SetWidth(msg.Width - 6)

		// Update renderer word wrap for the help screen
		m.renderer = newMarkdownRenderer(m.styles.Theme.IsDark, chatWidth-4)

		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()

	case tea.WindowSizeMsg:
		// Convert to our alias and re-process
		return m.Update(windowSizeMsg(msg))

	case spinner.TickMsg:
		if m.state.InFlight() {
			m.spinner, spCmd = m.spinner.Update(msg)
			// Repaint so the pending transcript row animates. SetContent
			// preserves the scroll offset, so this never fights the user.
			m.viewport.SetContent(m.renderTranscript())
			return m, spCmd
		}

	case chatReplyMsg:
		logging.APIDebug("chat reply: error=%q reservations_present=%v",
			msg.resp.Error, msg.resp.HasReservations)
		m.state = m.state.ResolveReply(session.Reply{
			Text:            msg.resp.Message,
			Err:             msg.resp.Error,
			Reservations:    msg.resp.Reservations,
			HasReservations: msg.resp.HasReservations,
		})
		m.serverStatus = serverReady
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, m.textarea.Focus()

	case chatFailedMsg:
		logging.API("chat request failed: %v", msg.err)
		m.state = m.state.ResolveFailure(transportFailureText)
		m.serverStatus = serverOffline
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, m.textarea.Focus()

	case reservationsLoadedMsg:
		if msg.err != nil {
			// The panel keeps its placeholder; chat still works.
			logging.Reservations("initial fetch failed: %v", msg.err)
			return m, nil
		}
		logging.Reservations("initial fetch: %d reservations", len(msg.reservations))
		m.state = m.state.ReplaceReservations(msg.reservations)
		return m, nil

	case serverStatusMsg:
		switch {
		case msg.err != nil:
			m.serverStatus = serverOffline
		case msg.status != nil && !msg.status.AgentInitialized:
			m.serverStatus = serverDegraded
		default:
			m.serverStatus = serverReady
		}
		return m, nil

	case resetDoneMsg:
		if msg.err != nil {
			logging.Session("reset failed, conversation kept: %v", msg.err)
			m.state = m.state.ResolveReset(false)
			m.serverStatus = serverOffline
			m.viewMode = ResetFailedView
			return m, nil
		}
		logging.Session("reset complete: transcript and reservations cleared")
		m.state = m.state.ResolveReset(true)
		m.serverStatus = serverReady
		m.textarea.Reset()
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, m.textarea.Focus()
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, spCmd)
}

// =============================================================================
// SUBMIT AND RESET
// =============================================================================

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}

	// Intercept slash commands
	if strings.HasPrefix(input, "/") {
		return m.handleCommand(input)
	}

	next, ok := m.state.BeginSend(input)
	if !ok {
		return m, nil
	}
	m.state = next

	// Add to input history (skip consecutive duplicates)
	if len(m.inputHistory) == 0 || m.inputHistory[len(m.inputHistory)-1] != input {
		m.inputHistory = append(m.inputHistory, input)
	}
	m.historyIndex = len(m.inputHistory)

	m.textarea.Reset()
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()

	logging.Session("message submitted: %d chars", len(input))

	return m, tea.Batch(m.spinner.Tick, m.sendMessage(input))
}

// beginReset opens the confirmation dialog. Refused while a message or an
// earlier reset is still in flight.
func (m Model) beginReset() (tea.Model, tea.Cmd) {
	next, ok := m.state.BeginReset()
	if !ok {
		return m, nil
	}
	m.state = next
	m.viewMode = ConfirmResetView
	return m, nil
}

func (m Model) handleConfirmResetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		logging.Session("reset confirmed")
		m.viewMode = ChatView
		return m, tea.Batch(m.spinner.Tick, m.performReset())
	case "n", "N", "esc", "q":
		logging.Session("reset declined")
		m.state = m.state.ResolveReset(false)
		m.viewMode = ChatView
		return m, nil
	}
	// Everything else is swallowed while the dialog is up.
	return m, nil
}

// =============================================================================
// SHUTDOWN
// =============================================================================

// Shutdown releases background resources. Safe to call more than once.
func (m Model) Shutdown() {
	if m.shutdownOnce == nil {
		return
	}
	m.shutdownOnce.Do(m.performShutdown)
}

func (m Model) performShutdown() {
	logging.Session("session %s shutting down", m.sessionID)
	if m.shutdownCancel != nil {
		m.shutdownCancel()
	}
	logging.CloseAll()
}
