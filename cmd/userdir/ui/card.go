package ui

import (
	"strings"

	"userdir/internal/directory"
)

// Card presents one user. Name and email are always shown; the remaining
// fields appear only while the card is expanded.
type Card struct {
	User     directory.User
	Expanded bool
}

// NewCard returns a collapsed card for u.
func NewCard(u directory.User) *Card {
	return &Card{User: u}
}

// Toggle flips the expanded state.
func (c *Card) Toggle() {
	c.Expanded = !c.Expanded
}

// View renders the card at the given outer width.
func (c *Card) View(styles Styles, width int, selected bool) string {
	style := styles.Card
	if selected {
		style = styles.CardSelected
	}
	// Border takes one cell on each side
	inner := width - 2
	if inner < 1 {
		inner = 1
	}

	var sb strings.Builder
	sb.WriteString(styles.Bold.Render(c.User.Name))
	sb.WriteString("\n")
	sb.WriteString(styles.Muted.Render(c.User.Email))

	if c.Expanded {
		sb.WriteString("\n")
		sb.WriteString(c.field(styles, "Address:", c.User.Address))
		sb.WriteString(c.field(styles, "Phone:", c.User.Phone))
		sb.WriteString(c.field(styles, "Company:", c.User.Company))
	}

	return style.Width(inner).Render(strings.TrimSuffix(sb.String(), "\n"))
}

func (c *Card) field(styles Styles, label, value string) string {
	return "\n" + styles.Label.Render(label) + " " + styles.Body.Render(value)
}
