package ui

// Layout constants for the directory page
const (
	// Card dimensions (outer width includes border)
	CardWidth = 38
	CardGap   = 1

	// Chrome around the card grid: title, search, sort/status, divider
	// above; key help and status message below.
	HeaderHeight = 4
	FooterHeight = 2

	// Horizontal padding of the page
	PagePaddingH = 2

	MinViewportHeight = 3
	MinContentWidth   = CardWidth
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
	}
}

// ContentWidth returns the usable width for the card grid.
func (l LayoutConfig) ContentWidth() int {
	w := l.TerminalWidth - PagePaddingH*2
	if w < MinContentWidth {
		return MinContentWidth
	}
	return w
}

// ViewportHeight returns the height left for the card grid.
func (l LayoutConfig) ViewportHeight() int {
	h := l.TerminalHeight - HeaderHeight - FooterHeight
	if h < MinViewportHeight {
		return MinViewportHeight
	}
	return h
}

// Columns returns how many cards fit side by side.
func (l LayoutConfig) Columns() int {
	cols := (l.ContentWidth() + CardGap) / (CardWidth + CardGap)
	if cols < 1 {
		return 1
	}
	return cols
}
