package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bitebot/internal/session"
)

// RenderReservationCard renders one reservation as a bordered card. Every
// field is a display value straight off the wire; nothing is parsed or
// reformatted here.
func RenderReservationCard(s Styles, r session.Reservation, width int) string {
	var sb strings.Builder

	sb.WriteString(s.CardTitle.Render(r.RestaurantName))
	sb.WriteString("\n")
	sb.WriteString(s.Body.Render(fmt.Sprintf("%s at %s", r.Date, r.Time)))
	sb.WriteString("\n")
	sb.WriteString(s.Body.Render(fmt.Sprintf("Party of %s · %s", r.PartySize, r.CustomerName)))
	sb.WriteString("\n")
	sb.WriteString(s.CardMeta.Render("Ref: " + r.ReservationID))

	card := s.Card
	if width > 4 {
		card = card.Width(width - 2)
	}
	return card.Render(sb.String())
}

// RenderReservationPanel renders the whole reservation list, or the fixed
// placeholder when the list is empty.
func RenderReservationPanel(s Styles, list []session.Reservation, width int) string {
	title := s.Title.Render("Your Reservations")

	if len(list) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			s.Muted.Render(session.NoReservationsText),
		)
	}

	parts := make([]string, 0, len(list)+1)
	parts = append(parts, title)
	for _, r := range list {
		parts = append(parts, RenderReservationCard(s, r, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
