// Package chat provides tests for view rendering. Assertions stick to
// content substrings so they hold regardless of the terminal color
// profile the test environment reports.
package chat

import (
	"strings"
	"testing"

	"bitebot/internal/session"
)

func TestView_InitializingBeforeReady(t *testing.T) {
	t.Parallel()
	m := NewTestModel()
	m.ready = false

	if got := m.View(); got != "Initializing..." {
		t.Errorf("Expected initializing screen, got %q", got)
	}
}

func TestRenderTranscript_ShowsWelcomeMessage(t *testing.T) {
	t.Parallel()
	m := NewTestModel()

	out := m.renderTranscript()
	if !strings.Contains(out, "book tables") {
		t.Errorf("Welcome message missing from transcript:\n%s", out)
	}
}

func TestRenderTranscript_LabelsBothRoles(t *testing.T) {
	t.Parallel()
	st, _ := session.NewState().BeginSend("any sushi nearby?")
	st = st.ResolveReply(session.Reply{Text: "Plenty."})
	m := NewTestModel(WithState(st))

	out := m.renderTranscript()
	if !strings.Contains(out, "You") {
		t.Error("User label missing")
	}
	if !strings.Contains(out, "any sushi nearby?") {
		t.Error("User message missing")
	}
	if !strings.Contains(out, "Plenty.") {
		t.Error("Assistant message missing")
	}
}

func TestRenderTranscript_PendingRowWhileInFlight(t *testing.T) {
	t.Parallel()
	m := inFlightModel(t)

	out := m.renderTranscript()
	if !strings.Contains(out, "Waiting for BiteBot") {
		t.Errorf("Pending row missing while in flight:\n%s", out)
	}

	// And gone again once the reply lands
	m.state = m.state.ResolveReply(session.Reply{Text: "Here you go."})
	out = m.renderTranscript()
	if strings.Contains(out, "Waiting for BiteBot") {
		t.Error("Pending row should disappear after resolution")
	}
}

func TestRenderTranscript_BoldMarkersConsumed(t *testing.T) {
	t.Parallel()
	st, _ := session.NewState().BeginSend("book it")
	st = st.ResolveReply(session.Reply{Text: "Booked **Da Enzo** at 7."})
	m := NewTestModel(WithState(st))

	out := m.renderTranscript()
	if strings.Contains(out, "**") {
		t.Error("Bold markers should be consumed by the markup pass")
	}
	if !strings.Contains(out, "Da Enzo") {
		t.Error("Bold content missing")
	}
}

func TestView_WideTerminalShowsReservationPanel(t *testing.T) {
	t.Parallel()
	m := NewTestModel(
		WithSize(140, 40),
		WithState(session.NewState().ReplaceReservations(sampleReservations())),
	)

	out := m.View()
	if !strings.Contains(out, "Your Reservations") {
		t.Error("Reservation panel missing on a wide terminal")
	}
	if !strings.Contains(out, "Trattoria Da Enzo") {
		t.Error("Reservation card missing")
	}
}

func TestView_NarrowTerminalShowsCountInFooter(t *testing.T) {
	t.Parallel()
	m := NewTestModel(
		WithSize(80, 30),
		WithState(session.NewState().ReplaceReservations(sampleReservations())),
	)

	out := m.View()
	if strings.Contains(out, "Your Reservations") {
		t.Error("Panel should be hidden on a narrow terminal")
	}
	if !strings.Contains(out, "Reservations: 1") {
		t.Error("Footer should show the reservation count instead")
	}
}

func TestView_ConfirmResetScreen(t *testing.T) {
	t.Parallel()
	m := NewTestModel(WithViewMode(ConfirmResetView))

	out := m.View()
	if !strings.Contains(out, "Start over?") {
		t.Error("Confirm dialog title missing")
	}
	if !strings.Contains(out, "keep everything") {
		t.Error("Decline hint missing")
	}
}

func TestView_ResetFailedScreen(t *testing.T) {
	t.Parallel()
	m := NewTestModel(WithViewMode(ResetFailedView))

	out := m.View()
	if !strings.Contains(out, "Reset failed") {
		t.Error("Failure notice missing")
	}
	if !strings.Contains(out, "left untouched") {
		t.Error("Reassurance line missing")
	}
}

func TestView_HelpScreenListsCommands(t *testing.T) {
	t.Parallel()
	m := NewTestModel(WithViewMode(HelpView))

	out := m.View()
	if !strings.Contains(out, "/reset") {
		t.Error("Help should list /reset")
	}
	if !strings.Contains(out, "Press any key to return") {
		t.Error("Dismiss hint missing")
	}
}

func TestView_HeaderShowsServerState(t *testing.T) {
	t.Parallel()
	cases := []struct {
		status string
		want   string
	}{
		{serverReady, "Ready"},
		{serverDegraded, "Degraded"},
		{serverOffline, "Offline"},
		{"", "Connecting..."},
	}

	for _, tc := range cases {
		m := NewTestModel()
		m.serverStatus = tc.status
		if out := m.renderHeader(); !strings.Contains(out, tc.want) {
			t.Errorf("Status %q: expected header to contain %q", tc.status, tc.want)
		}
	}
}

func TestView_HeaderShowsSpinnerLabelWhileInFlight(t *testing.T) {
	t.Parallel()
	m := inFlightModel(t)

	if out := m.renderHeader(); !strings.Contains(out, "Waiting for BiteBot") {
		t.Error("Header should show the waiting label while in flight")
	}

	st, _ := session.NewState().BeginReset()
	m.state = st
	if out := m.renderHeader(); !strings.Contains(out, "Resetting") {
		t.Error("Header should show the resetting label during reset")
	}
}
