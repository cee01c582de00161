// Package session holds the client-side conversation state and the pure
// transitions that drive it. Nothing here touches the network or the
// terminal: the chat UI feeds resolutions in as events and projects the
// resulting State. Transitions return new values; a State handed out is
// never mutated afterwards.
package session

import (
	"strings"
	"time"
)

// Roles for transcript entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// WelcomeText is the assistant greeting on a fresh session. A successful
// reset restores it.
const WelcomeText = "Hi! I'm BiteBot 🍽️\n\nI can help you discover restaurants and book tables. Ask me anything: cuisine, neighborhood, party size, and I'll take it from there."

// NoReservationsText is the reservation panel placeholder when the session
// has no reservations.
const NoReservationsText = "No reservations yet"

// Phase tracks the single outstanding request, if any. The zero value is
// PhaseIdle. Concurrent requests are not a thing in this client: BeginSend
// and BeginReset both refuse unless the phase is idle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingReply
	PhaseResetting
)

// Entry is one transcript element. Pending marks the transient waiting
// indicator that stands in for the assistant's reply while a request is
// outstanding; it is removed, never answered, on resolution.
type Entry struct {
	Role    string
	Content string
	Time    time.Time
	Pending bool
}

// Reservation is a confirmed booking as the backend reports it. Every field
// is an opaque display value; ReservationID is a label, not a key the client
// dereferences.
type Reservation struct {
	ReservationID  string
	RestaurantName string
	Date           string
	Time           string
	PartySize      string
	CustomerName   string
}

// Reply is the resolution of a chat request. HasReservations distinguishes
// a response that omitted the reservations key (no change) from one that
// included it empty (the session was just cleared server-side): the two must
// not collapse into each other.
type Reply struct {
	Text            string
	Err             string
	Reservations    []Reservation
	HasReservations bool
}

// State is the whole of the conversation the client knows about.
type State struct {
	Transcript   []Entry
	Reservations []Reservation
	Phase        Phase
}

// NewState returns the boot state: welcome entry, no reservations, idle.
// Reset success returns here too, so boot and post-reset are identical by
// construction.
func NewState() State {
	return State{
		Transcript: []Entry{{
			Role:    RoleAssistant,
			Content: WelcomeText,
			Time:    time.Now(),
		}},
	}
}

// BeginSend validates and applies a submit. The boolean reports whether the
// send was accepted; a rejected send (blank after trimming, or a request
// already outstanding) returns the state unchanged and the caller must not
// start a request. An accepted send appends exactly one user entry and
// exactly one pending entry.
func (s State) BeginSend(text string) (State, bool) {
	text = strings.TrimSpace(text)
	if text == "" || s.Phase != PhaseIdle {
		return s, false
	}

	now := time.Now()
	t := cloneEntries(s.Transcript, 2)
	t = append(t, Entry{Role: RoleUser, Content: text, Time: now})
	t = append(t, Entry{Role: RoleAssistant, Time: now, Pending: true})

	s.Transcript = t
	s.Phase = PhaseAwaitingReply
	return s, true
}

// ResolveReply applies the outcome of a chat request: the pending entry goes
// away, exactly one assistant entry arrives, and the phase returns to idle.
//
//   - Err set            -> "Error: " + Err, reservations untouched
//   - reservations key   -> Text, reservations wholesale-replaced (an empty
//     present in reply      list clears the panel)
//   - reservations key   -> Text, reservations untouched
//     absent from reply
//
// A reply that arrives with no request outstanding is dropped.
func (s State) ResolveReply(r Reply) State {
	if s.Phase != PhaseAwaitingReply {
		return s
	}

	content := r.Text
	if r.Err != "" {
		content = "Error: " + r.Err
	}

	t := withoutPending(s.Transcript)
	t = append(t, Entry{Role: RoleAssistant, Content: content, Time: time.Now()})

	s.Transcript = t
	s.Phase = PhaseIdle
	if r.Err == "" && r.HasReservations {
		s.Reservations = cloneReservations(r.Reservations)
	}
	return s
}

// ResolveFailure is the transport-failure arm of ResolveReply: the request
// never produced a backend payload, so the assistant slot gets the failure
// description and the reservations are untouched.
func (s State) ResolveFailure(desc string) State {
	return s.ResolveReply(Reply{Text: desc})
}

// ReplaceReservations replaces the reservation list wholesale. Used by the
// boot fetch; replacing with an equal list yields an equal state.
func (s State) ReplaceReservations(list []Reservation) State {
	s.Reservations = cloneReservations(list)
	return s
}

// BeginReset marks a reset request outstanding. It deliberately leaves the
// transcript and reservations alone: a reset that later fails must be able
// to hand back exactly the state the user was looking at. Refused unless
// idle.
func (s State) BeginReset() (State, bool) {
	if s.Phase != PhaseIdle {
		return s, false
	}
	s.Phase = PhaseResetting
	return s, true
}

// ResolveReset finishes a reset. Success clears everything back to the boot
// state. Failure restores idle and nothing else, so the transcript and
// reservations come through bit-for-bit unchanged; no path other than
// success ever clears.
func (s State) ResolveReset(ok bool) State {
	if s.Phase != PhaseResetting {
		return s
	}
	if ok {
		return NewState()
	}
	s.Phase = PhaseIdle
	return s
}

// InFlight reports whether any request is outstanding.
func (s State) InFlight() bool {
	return s.Phase != PhaseIdle
}

// PendingCount counts pending entries. The invariant is 1 while a chat
// request is outstanding and 0 otherwise; tests lean on this.
func (s State) PendingCount() int {
	n := 0
	for _, e := range s.Transcript {
		if e.Pending {
			n++
		}
	}
	return n
}

// cloneEntries copies the transcript so diverging states never share a
// backing array.
func cloneEntries(in []Entry, extraCap int) []Entry {
	out := make([]Entry, len(in), len(in)+extraCap)
	copy(out, in)
	return out
}

// withoutPending copies the transcript minus pending entries.
func withoutPending(in []Entry) []Entry {
	out := make([]Entry, 0, len(in))
	for _, e := range in {
		if e.Pending {
			continue
		}
		out = append(out, e)
	}
	return out
}

func cloneReservations(in []Reservation) []Reservation {
	if in == nil {
		return nil
	}
	out := make([]Reservation, len(in))
	copy(out, in)
	return out
}
