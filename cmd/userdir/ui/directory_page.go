package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"userdir/internal/directory"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

const (
	loadingText   = "Loading users..."
	errorPrefix   = "Error encountered: "
	headingText   = "List of users"
	noMatchesText = "No users match your search."
)

type focusArea int

const (
	focusGrid focusArea = iota
	focusSearch
)

// loadDoneMsg carries a finished fetch back into the event loop.
type loadDoneMsg struct {
	result directory.LoadResult
}

// DirectoryPageModel is the interactive user directory: a search box, a sort
// indicator and a scrollable grid of user cards.
type DirectoryPageModel struct {
	ctrl   *directory.Controller
	logger *zap.Logger
	styles Styles
	keys   KeyMap
	layout LayoutConfig

	search   textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model

	// Cards keyed by user ID, holding only the displayed subset.
	cards    map[int]*Card
	cache    *RenderCache
	selected int
	focus    focusArea

	showHelp bool
	status   string
}

// NewDirectoryPageModel creates the page for ctrl. The first load starts in Init.
func NewDirectoryPageModel(ctrl *directory.Controller, styles Styles, logger *zap.Logger) DirectoryPageModel {
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Prompt = "Search: "
	ti.Placeholder = "name or email..."
	ti.PromptStyle = styles.Prompt
	ti.TextStyle = styles.UserInput
	ti.CharLimit = 0
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	layout := NewLayoutConfig(80, 24)
	vp := viewport.New(layout.ContentWidth(), layout.ViewportHeight())

	return DirectoryPageModel{
		ctrl:     ctrl,
		logger:   logger,
		styles:   styles,
		keys:     DefaultKeyMap(),
		layout:   layout,
		search:   ti,
		spinner:  sp,
		viewport: vp,
		help:     help.New(),
		cards:    make(map[int]*Card),
		cache:    NewRenderCache(256),
	}
}

// Init starts the spinner and the first load.
func (m DirectoryPageModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startLoad())
}

// startLoad begins a load cycle and returns the command that runs the fetch
// off the event loop.
func (m DirectoryPageModel) startLoad() tea.Cmd {
	ticket := m.ctrl.StartLoad()
	m.logger.Debug("fetching users", zap.String("load_id", ticket.ID))
	return func() tea.Msg {
		return loadDoneMsg{result: ticket.Run(context.Background())}
	}
}

// SetSize updates the layout for a new terminal size.
func (m *DirectoryPageModel) SetSize(width, height int) {
	m.layout = NewLayoutConfig(width, height)
	m.viewport.Width = m.layout.ContentWidth()
	m.viewport.Height = m.layout.ViewportHeight()
	m.help.Width = m.layout.ContentWidth() - m.styles.Footer.GetHorizontalFrameSize()
	m.search.Width = min(40, m.layout.ContentWidth()-len(m.search.Prompt)-1)
	if m.showHelp {
		m.viewport.SetContent(renderHelp(m.styles.Theme, m.viewport.Width))
		return
	}
	m.refreshGrid()
}

// Update handles messages.
func (m DirectoryPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadDoneMsg:
		prev, hadPrev := m.selectedUser()
		if !m.ctrl.Complete(msg.result) {
			return m, nil
		}
		if msg.result.Err != nil {
			m.logger.Warn("load failed", zap.String("load_id", msg.result.ID), zap.Error(msg.result.Err))
		}
		m.syncCards()
		m.restoreSelection(prev, hadPrev)
		m.refreshGrid()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and similar input messages
	if m.focus == focusSearch {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m DirectoryPageModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}
	m.status = ""

	if m.showHelp {
		switch msg.String() {
		case "?", "esc", "q":
			m.showHelp = false
			m.refreshGrid()
			m.viewport.GotoTop()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusSearch {
		return m.updateSearch(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Reload):
		if m.ctrl.Loading() {
			return m, nil
		}
		return m, tea.Batch(m.spinner.Tick, m.startLoad())
	}

	if m.ctrl.Phase() != directory.PhaseReady {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		m.focus = focusSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-m.layout.Columns())
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(m.layout.Columns())
	case key.Matches(msg, m.keys.Left):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Toggle):
		if card := m.selectedCard(); card != nil {
			card.Toggle()
			m.refreshGrid()
		}
	case key.Matches(msg, m.keys.SortName):
		m.sortBy(directory.SortByName)
	case key.Matches(msg, m.keys.SortEmail):
		m.sortBy(directory.SortByEmail)
	case key.Matches(msg, m.keys.Copy):
		m.copySelectedEmail()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.viewport.SetContent(renderHelp(m.styles.Theme, m.viewport.Width))
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// updateSearch feeds a key to the search box and applies the new term on
// every keystroke.
func (m DirectoryPageModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.LeaveInput) {
		m.focus = focusGrid
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if term := m.search.Value(); term != m.ctrl.SearchTerm() {
		prev, hadPrev := m.selectedUser()
		m.ctrl.SetSearchTerm(term)
		m.syncCards()
		m.restoreSelection(prev, hadPrev)
		m.refreshGrid()
	}
	return m, cmd
}

// sortBy applies a sort key press, keeping the same user selected.
func (m *DirectoryPageModel) sortBy(col directory.SortColumn) {
	prev, hadPrev := m.selectedUser()
	m.ctrl.SetSortColumn(col)
	m.restoreSelection(prev, hadPrev)
	m.refreshGrid()
}

// restoreSelection moves the selection to prev if it is still displayed.
// Otherwise the clamped index from syncCards stands.
func (m *DirectoryPageModel) restoreSelection(prev directory.User, ok bool) {
	if !ok {
		return
	}
	idx := slices.IndexFunc(m.ctrl.Displayed(), func(u directory.User) bool {
		return u.ID == prev.ID
	})
	if idx >= 0 {
		m.selected = idx
	}
}

func (m DirectoryPageModel) quit() (tea.Model, tea.Cmd) {
	m.ctrl.Close()
	return m, tea.Quit
}

// syncCards keeps one card per displayed user. Cards for users that left the
// subset are dropped, so a returning user starts collapsed.
func (m *DirectoryPageModel) syncCards() {
	displayed := m.ctrl.Displayed()
	next := make(map[int]*Card, len(displayed))
	for _, u := range displayed {
		if card, ok := m.cards[u.ID]; ok {
			card.User = u
			next[u.ID] = card
			continue
		}
		next[u.ID] = NewCard(u)
	}
	m.cards = next
	m.clampSelection(len(displayed))
}

func (m *DirectoryPageModel) clampSelection(n int) {
	if m.selected >= n {
		m.selected = n - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *DirectoryPageModel) moveSelection(delta int) {
	n := len(m.ctrl.Displayed())
	if n == 0 {
		return
	}
	next := m.selected + delta
	if next < 0 || next >= n {
		return
	}
	m.selected = next
	m.refreshGrid()
}

func (m DirectoryPageModel) selectedUser() (directory.User, bool) {
	displayed := m.ctrl.Displayed()
	if m.selected < 0 || m.selected >= len(displayed) {
		return directory.User{}, false
	}
	return displayed[m.selected], true
}

func (m DirectoryPageModel) selectedCard() *Card {
	u, ok := m.selectedUser()
	if !ok {
		return nil
	}
	return m.cards[u.ID]
}

func (m *DirectoryPageModel) copySelectedEmail() {
	u, ok := m.selectedUser()
	if !ok || u.Email == "" {
		return
	}
	if err := clipboardWriteAll(u.Email); err != nil {
		m.logger.Warn("clipboard write failed", zap.Error(err))
		m.status = m.styles.Error.Render("Clipboard unavailable: " + err.Error())
		return
	}
	m.status = m.styles.Success.Render(fmt.Sprintf("Copied %s to clipboard", u.Email))
}

// refreshGrid renders the cards into the viewport and scrolls the selected
// row into view.
func (m *DirectoryPageModel) refreshGrid() {
	if m.showHelp {
		return
	}
	displayed := m.ctrl.Displayed()
	if len(displayed) == 0 {
		m.viewport.SetContent(m.styles.Warning.Render(noMatchesText))
		m.viewport.GotoTop()
		return
	}

	cols := m.layout.Columns()
	gap := strings.Repeat(" ", CardGap)
	rows := make([]string, 0, (len(displayed)+cols-1)/cols)
	selTop, selBottom, offset := 0, 0, 0

	for start := 0; start < len(displayed); start += cols {
		end := min(start+cols, len(displayed))
		cells := make([]string, 0, 2*(end-start))
		for i := start; i < end; i++ {
			u := displayed[i]
			card, ok := m.cards[u.ID]
			if !ok {
				card = NewCard(u)
				m.cards[u.ID] = card
			}
			if i > start {
				cells = append(cells, gap)
			}
			cells = append(cells, m.cache.Card(card, m.styles, CardWidth, i == m.selected))
		}
		row := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
		height := lipgloss.Height(row)
		if m.selected >= start && m.selected < end {
			selTop, selBottom = offset, offset+height
		}
		rows = append(rows, row)
		offset += height
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, rows...))
	switch {
	case selTop < m.viewport.YOffset:
		m.viewport.SetYOffset(selTop)
	case selBottom > m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(selBottom - m.viewport.Height)
	}
}

func (m DirectoryPageModel) statusLine() string {
	count := fmt.Sprintf("%d of %d users", len(m.ctrl.Displayed()), len(m.ctrl.Users()))
	sortText := "unsorted"
	if col := m.ctrl.SortColumn(); col != directory.SortNone {
		sortText = col.String() + " " + m.ctrl.SortDirection().Arrow()
	}
	return m.styles.Muted.Render(count) + "  " + m.styles.Badge.Render("sort: "+sortText)
}

// View renders the page.
func (m DirectoryPageModel) View() string {
	switch m.ctrl.Phase() {
	case directory.PhaseLoading:
		return m.styles.Content.Render(m.spinner.View() + " " + m.styles.Info.Render(loadingText))
	case directory.PhaseError:
		return m.styles.Content.Render(m.styles.Error.Render(errorPrefix + m.ctrl.Err()))
	}

	page := lipgloss.NewStyle().Padding(0, PagePaddingH)

	if m.showHelp {
		return page.Render(lipgloss.JoinVertical(lipgloss.Left,
			m.viewport.View(),
			m.styles.Subtitle.Render("? or esc to close help"),
		))
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Header.Render(headingText))
	sb.WriteString("\n")
	sb.WriteString(m.search.View())
	sb.WriteString("\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(m.styles.RenderDivider(m.layout.ContentWidth()))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.styles.Footer.Render(m.help.View(m.keys)))
	if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(m.status)
	}
	return page.Render(sb.String())
}
