package ui

import (
	"strings"
	"testing"

	"userdir/internal/directory"
)

func TestCardToggle(t *testing.T) {
	card := NewCard(directory.User{
		ID:      1,
		Name:    "Ann",
		Email:   "ann@x.io",
		Address: "Main St, Town",
		Phone:   "555-0100",
		Company: "Acme",
	})
	styles := NewStyles(LightTheme())

	collapsed := card.View(styles, CardWidth, false)
	for _, want := range []string{"Ann", "ann@x.io"} {
		if !strings.Contains(collapsed, want) {
			t.Errorf("collapsed view missing %q:\n%s", want, collapsed)
		}
	}
	if strings.Contains(collapsed, "Address:") {
		t.Fatalf("collapsed view should not show details:\n%s", collapsed)
	}

	card.Toggle()
	if !card.Expanded {
		t.Fatalf("expected card to be expanded after Toggle")
	}
	expanded := card.View(styles, CardWidth, true)
	for _, want := range []string{"Address:", "Main St, Town", "Phone:", "555-0100", "Company:", "Acme"} {
		if !strings.Contains(expanded, want) {
			t.Errorf("expanded view missing %q:\n%s", want, expanded)
		}
	}

	card.Toggle()
	if card.Expanded {
		t.Fatalf("expected card to collapse on second Toggle")
	}
	if card.User.Name != "Ann" {
		t.Fatalf("Toggle must not change the user")
	}
}

func TestCardMissingFields(t *testing.T) {
	card := NewCard(directory.User{ID: 7, Name: "Nobody"})
	card.Toggle()

	view := card.View(NewStyles(DarkTheme()), CardWidth, false)
	for _, want := range []string{"Nobody", "Address:", "Phone:", "Company:"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestCardNarrowWidth(t *testing.T) {
	card := NewCard(directory.User{ID: 1, Name: "Ann", Email: "ann@x.io"})
	if view := card.View(NewStyles(LightTheme()), 0, false); view == "" {
		t.Fatalf("expected a rendered card at zero width")
	}
}
