// Package chat provides the interactive TUI chat client for BiteBot.
// This file contains session construction: config, styles, UI components,
// and the backend client.
package chat

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"bitebot/cmd/bitebot/ui"
	"bitebot/internal/api"
	"bitebot/internal/config"
	"bitebot/internal/logging"
	"bitebot/internal/session"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// SESSION CONSTRUCTION
// =============================================================================

// InitChat builds the chat model. The terminal dimensions arrive later via
// the first WindowSizeMsg, so the model starts not-ready with placeholder
// viewport dimensions.
func InitChat() Model {
	// Load configuration; fall back to defaults on any problem
	cfgPath, _ := config.ConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	workspace, _ := os.Getwd()
	_ = logging.Initialize(workspace)

	// Initialize styles
	styles := ui.NewStyles(ui.ThemeByName(cfg.UI.Theme))

	// Initialize textarea for input
	ta := textarea.New()
	ta.Placeholder = "Ask about restaurants or book a table... (Enter to send, Alt+Enter for newline)"
	ta.Focus()
	ta.CharLimit = 4096
	ta.SetWidth(80)
	ta.SetHeight(3)

	// Initialize spinner
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	// Initialize viewport for the transcript
	vp := viewport.New(80, 20)
	vp.SetContent("")

	// Markdown renderer for the help screen
	renderer := newMarkdownRenderer(styles.Theme.IsDark, 80)

	// Backend client
	client := api.NewClientWithConfig(api.Config{
		BaseURL: cfg.Server.BaseURL,
		Timeout: cfg.GetServerTimeout(),
	})

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	m := Model{
		textarea:       ta,
		viewport:       vp,
		spinner:        sp,
		styles:         styles,
		renderer:       renderer,
		state:          session.NewState(),
		client:         client,
		cfg:            cfg,
		viewMode:       ChatView,
		inputHistory:   []string{},
		historyIndex:   0,
		sessionID:      fmt.Sprintf("sess_%d", time.Now().UnixNano()),
		shutdownOnce:   &sync.Once{},
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	m.viewport.SetContent(m.renderTranscript())

	logging.Boot("session %s started: server=%s theme=%s",
		m.sessionID, cfg.Server.BaseURL, cfg.UI.Theme)

	return m
}

// newMarkdownRenderer builds the glamour renderer used by the help screen.
// Light terminals need the explicit light style or glamour picks unreadable
// colors.
func newMarkdownRenderer(isDark bool, wrap int) *glamour.TermRenderer {
	if wrap < 20 {
		wrap = 20
	}
	if isDark {
		r, _ := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		return r
	}
	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("light"),
		glamour.WithWordWrap(wrap),
	)
	return r
}
