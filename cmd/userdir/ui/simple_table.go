package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SimpleTable renders static rows, either styled for a terminal or as
// tab-separated text for pipes.
type SimpleTable struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// NewSimpleTable creates a new SimpleTable with the given title and headers.
func NewSimpleTable(title string, headers []string) *SimpleTable {
	return &SimpleTable{
		Title:   title,
		Headers: headers,
		Rows:    make([][]string, 0),
	}
}

// AddRow adds a row to the table. Missing cells render empty and extra
// cells are dropped.
func (t *SimpleTable) AddRow(row ...string) {
	cells := make([]string, len(t.Headers))
	copy(cells, row)
	t.Rows = append(t.Rows, cells)
}

func (t *SimpleTable) columnWidths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	// Room for the one-cell padding on each side
	for i := range widths {
		widths[i] += 2
	}
	return widths
}

// View renders the table using the provided styles.
func (t *SimpleTable) View(styles Styles) string {
	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	widths := t.columnWidths()
	headerStyle := styles.Bold.Padding(0, 1)
	rowStyle := styles.Body.Padding(0, 1)
	sepStyle := styles.Muted

	writeLine := func(cells []string, style lipgloss.Style) {
		for i, cell := range cells {
			sb.WriteString(style.Width(widths[i]).Render(cell))
			if i < len(cells)-1 {
				sb.WriteString(sepStyle.Render("|"))
			}
		}
		sb.WriteString("\n")
	}

	writeLine(t.Headers, headerStyle)

	total := len(t.Headers) - 1
	for _, w := range widths {
		total += w
	}
	if total < 0 {
		total = 0
	}
	sb.WriteString(sepStyle.Render(strings.Repeat("-", total)) + "\n")

	for _, row := range t.Rows {
		writeLine(row, rowStyle)
	}

	return sb.String()
}

// Plain renders the headers and rows as tab-separated lines without a title.
func (t *SimpleTable) Plain() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Headers, "\t"))
	sb.WriteString("\n")
	for _, row := range t.Rows {
		sb.WriteString(strings.Join(row, "\t"))
		sb.WriteString("\n")
	}
	return sb.String()
}
