package ui

import (
	"github.com/charmbracelet/glamour"
)

const helpMarkdown = `# userdir

Browse the user directory. Cards show name and email; open one to see the
address, phone and company.

## Navigation

| Key | Action |
|-----|--------|
| ↑/k ↓/j | Move between rows |
| ←/h →/l | Move between columns |
| pgup / pgdn | Scroll the grid |
| enter / space | Show or hide details |

## Search and sort

| Key | Action |
|-----|--------|
| / or tab | Focus the search box |
| esc, enter or tab | Back to the cards |
| n | Sort by name (again to reverse) |
| e | Sort by email (again to reverse) |

Search matches name or email, ignoring case.

## Other

| Key | Action |
|-----|--------|
| y | Copy the selected email |
| r | Reload users |
| ? | Close this help |
| q / ctrl+c | Quit |
`

// renderHelp renders the help text for the given width, falling back to the
// raw markdown if glamour fails.
func renderHelp(theme Theme, width int) string {
	style := "light"
	if theme.IsDark {
		style = "dark"
	}
	if width < 20 {
		width = 20
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return helpMarkdown
	}
	out, err := renderer.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}
