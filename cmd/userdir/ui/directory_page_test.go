package ui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"userdir/internal/directory"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	users []directory.RawUser
	err   error
}

func (s stubSource) FetchUsers(ctx context.Context) ([]directory.RawUser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.users, nil
}

func rawUsers() []directory.RawUser {
	return []directory.RawUser{
		{
			ID:      1,
			Name:    "Bob",
			Email:   "bob@x.io",
			Address: directory.RawAddress{Street: "Elm St", City: "Ashby"},
			Phone:   "555-0101",
			Company: directory.RawCompany{Name: "Initech"},
		},
		{ID: 2, Name: "Ann", Email: "ann@x.io", Phone: "555-0102"},
		{ID: 3, Name: "Carol", Email: "carol@x.io"},
	}
}

func newPage(t *testing.T, src directory.Source) DirectoryPageModel {
	t.Helper()
	ctrl := directory.NewController(src, directory.WithLogger(zap.NewNop()))
	t.Cleanup(ctrl.Close)

	page := NewDirectoryPageModel(ctrl, NewStyles(LightTheme()), zap.NewNop())
	// Narrow enough for a single column, so cards stack in display order.
	page, _ = update(t, page, tea.WindowSizeMsg{Width: 60, Height: 40})
	return page
}

// load runs one load cycle the way the program would.
func load(t *testing.T, page DirectoryPageModel) DirectoryPageModel {
	t.Helper()
	msg := page.startLoad()()
	page, _ = update(t, page, msg)
	return page
}

func update(t *testing.T, page DirectoryPageModel, msg tea.Msg) (DirectoryPageModel, tea.Cmd) {
	t.Helper()
	next, cmd := page.Update(msg)
	out, ok := next.(DirectoryPageModel)
	require.True(t, ok, "Update returned %T", next)
	return out, cmd
}

func press(t *testing.T, page DirectoryPageModel, keys ...string) DirectoryPageModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		page, _ = update(t, page, msg)
	}
	return page
}

func typeText(t *testing.T, page DirectoryPageModel, text string) DirectoryPageModel {
	t.Helper()
	for _, r := range text {
		page, _ = update(t, page, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return page
}

func assertOrder(t *testing.T, view string, names ...string) {
	t.Helper()
	last := -1
	for _, name := range names {
		idx := strings.Index(view, name)
		require.GreaterOrEqual(t, idx, 0, "%q missing from view", name)
		assert.Greater(t, idx, last, "%q out of order", name)
		last = idx
	}
}

func TestDirectoryPage_LoadingView(t *testing.T) {
	page := newPage(t, stubSource{users: rawUsers()})

	view := page.View()
	assert.Contains(t, view, loadingText)
	assert.NotContains(t, view, headingText)
	assert.NotContains(t, view, "Bob")
}

func TestDirectoryPage_InitStartsLoad(t *testing.T) {
	page := newPage(t, stubSource{users: rawUsers()})
	assert.NotNil(t, page.Init())
	assert.True(t, page.ctrl.Loading())
}

func TestDirectoryPage_ReadyView(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))

	view := page.View()
	assert.Contains(t, view, headingText)
	assert.Contains(t, view, "3 of 3 users")
	assert.Contains(t, view, "sort: unsorted")
	assert.NotContains(t, view, loadingText)
	assertOrder(t, view, "Bob", "Ann", "Carol")

	// A bare rule line sits between the status line and the grid.
	lines := strings.Split(view, "\n")
	divider := slices.IndexFunc(lines, func(l string) bool {
		return strings.Contains(l, "─") && strings.Trim(l, " ─") == ""
	})
	require.GreaterOrEqual(t, divider, 0, "no divider line")
	assert.Contains(t, strings.Join(lines[:divider], "\n"), "sort: unsorted")
	assert.Contains(t, strings.Join(lines[divider:], "\n"), "Bob")
}

func TestDirectoryPage_ErrorView(t *testing.T) {
	page := load(t, newPage(t, stubSource{err: errors.New("failed to fetch users: HTTP 500")}))

	view := page.View()
	assert.Contains(t, view, "Error encountered: failed to fetch users: HTTP 500")
	assert.NotContains(t, view, headingText)
	assert.NotContains(t, view, loadingText)
	assert.False(t, page.ctrl.Loading())

	// Grid keys do nothing while in the error state.
	page = press(t, page, "n")
	assert.Equal(t, directory.SortNone, page.ctrl.SortColumn())
}

func TestDirectoryPage_SearchFiltersOnEveryKeystroke(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))

	page = press(t, page, "/")
	require.Equal(t, focusSearch, page.focus)

	page = typeText(t, page, "B")
	assert.Equal(t, "B", page.ctrl.SearchTerm())
	page = typeText(t, page, "O")

	view := page.View()
	assert.Contains(t, view, "1 of 3 users")
	assert.Contains(t, view, "bob@x.io")
	assert.NotContains(t, view, "ann@x.io")
	assert.NotContains(t, view, "carol@x.io")

	// Typing q while searching is text, not quit.
	page = typeText(t, page, "q")
	assert.Equal(t, "BOq", page.ctrl.SearchTerm())
	assert.Contains(t, page.View(), noMatchesText)

	page = press(t, page, "esc")
	assert.Equal(t, focusGrid, page.focus)
	assert.Equal(t, "BOq", page.ctrl.SearchTerm())
}

func TestDirectoryPage_SortToggles(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))

	page = press(t, page, "n")
	view := page.View()
	assert.Contains(t, view, "name ▲")
	assertOrder(t, view, "Ann", "Bob", "Carol")

	page = press(t, page, "n")
	view = page.View()
	assert.Contains(t, view, "name ▼")
	assertOrder(t, view, "Carol", "Bob", "Ann")

	page = press(t, page, "e")
	assert.Contains(t, page.View(), "email ▲")
	assert.Equal(t, directory.Ascending, page.ctrl.SortDirection())
}

func TestDirectoryPage_SortKeepsSelectedUser(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))
	require.Equal(t, 0, page.selected)

	page = press(t, page, "n")
	u, ok := page.selectedUser()
	require.True(t, ok)
	assert.Equal(t, 1, u.ID)
	assert.Equal(t, 1, page.selected, "Bob sorts after Ann")

	page = press(t, page, "enter")
	assert.True(t, page.cards[1].Expanded)
	assert.False(t, page.cards[2].Expanded)
}

func TestDirectoryPage_SearchKeepsSelectedUser(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))
	page = press(t, page, "down", "down")
	require.Equal(t, 2, page.selected)

	page = press(t, page, "/")
	page = typeText(t, page, "c")
	u, ok := page.selectedUser()
	require.True(t, ok)
	assert.Equal(t, 3, u.ID)
	assert.Equal(t, 0, page.selected)

	page = press(t, page, "backspace", "esc")
	u, ok = page.selectedUser()
	require.True(t, ok)
	assert.Equal(t, 3, u.ID)
	assert.Equal(t, 2, page.selected)
}

func TestDirectoryPage_LongSearchTermNotTruncated(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))
	page = press(t, page, "/")

	term := strings.Repeat("x", 150)
	page = typeText(t, page, term)
	assert.Equal(t, term, page.ctrl.SearchTerm())
}

func TestDirectoryPage_ToggleCard(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))
	assert.NotContains(t, page.View(), "Address:")

	page = press(t, page, "enter")
	view := page.View()
	assert.Contains(t, view, "Address:")
	assert.Contains(t, view, "Elm St, Ashby")
	assert.Contains(t, view, "Initech")

	page = press(t, page, "enter")
	assert.NotContains(t, page.View(), "Address:")
}

func TestDirectoryPage_SelectionMoves(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))

	page = press(t, page, "down", "j", "enter")
	assert.Equal(t, 2, page.selected)
	assert.True(t, page.cards[3].Expanded)
	assert.False(t, page.cards[1].Expanded)

	// Moving past the end keeps the last card selected.
	page = press(t, page, "down")
	assert.Equal(t, 2, page.selected)

	page = press(t, page, "k")
	assert.Equal(t, 1, page.selected)
}

func TestDirectoryPage_CardRemountsCollapsed(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))

	page = press(t, page, "enter")
	require.True(t, page.cards[1].Expanded)

	page = press(t, page, "/")
	page = typeText(t, page, "ann")
	_, stillThere := page.cards[1]
	assert.False(t, stillThere, "card for a filtered-out user should be discarded")

	page = press(t, page, "backspace", "backspace", "backspace", "esc")
	require.Contains(t, page.cards, 1)
	assert.False(t, page.cards[1].Expanded)
	assert.NotContains(t, page.View(), "Address:")
}

func TestDirectoryPage_CopyEmail(t *testing.T) {
	var copied string
	orig := clipboardWriteAll
	clipboardWriteAll = func(s string) error {
		copied = s
		return nil
	}
	t.Cleanup(func() { clipboardWriteAll = orig })

	page := load(t, newPage(t, stubSource{users: rawUsers()}))
	page = press(t, page, "j", "y")

	assert.Equal(t, "ann@x.io", copied)
	assert.Contains(t, page.View(), "Copied ann@x.io to clipboard")

	// The status clears on the next key.
	page = press(t, page, "k")
	assert.NotContains(t, page.View(), "Copied")
}

func TestDirectoryPage_CopyEmailFailure(t *testing.T) {
	orig := clipboardWriteAll
	clipboardWriteAll = func(string) error { return errors.New("no clipboard") }
	t.Cleanup(func() { clipboardWriteAll = orig })

	page := load(t, newPage(t, stubSource{users: rawUsers()}))
	page = press(t, page, "y")
	assert.Contains(t, page.View(), "Clipboard unavailable: no clipboard")
}

func TestDirectoryPage_Reload(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))

	next, cmd := page.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	page = next.(DirectoryPageModel)
	require.NotNil(t, cmd)
	assert.True(t, page.ctrl.Loading())
	assert.Contains(t, page.View(), loadingText)

	// A second reload while one is in flight is ignored.
	_, cmd = page.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Nil(t, cmd)
}

func TestDirectoryPage_StaleLoadIgnored(t *testing.T) {
	page := newPage(t, stubSource{users: rawUsers()})

	stale := page.startLoad()()
	fresh := page.startLoad()()

	page, _ = update(t, page, stale)
	assert.True(t, page.ctrl.Loading())

	page, _ = update(t, page, fresh)
	assert.False(t, page.ctrl.Loading())
	assert.Contains(t, page.View(), "3 of 3 users")
}

func TestDirectoryPage_HelpOverlay(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))

	page = press(t, page, "?")
	assert.True(t, page.showHelp)
	assert.Contains(t, page.View(), "close help")

	page = press(t, page, "esc")
	assert.False(t, page.showHelp)
	assert.Contains(t, page.View(), headingText)
}

func TestDirectoryPage_QuitClosesController(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))

	_, cmd := page.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)

	// Results arriving after quit are dropped.
	ticket := page.ctrl.StartLoad()
	assert.False(t, page.ctrl.Complete(ticket.Run(context.Background())))
}

func TestDirectoryPage_WideLayoutUsesColumns(t *testing.T) {
	page := load(t, newPage(t, stubSource{users: rawUsers()}))
	page, _ = update(t, page, tea.WindowSizeMsg{Width: 200, Height: 40})

	require.Equal(t, 5, page.layout.Columns())
	// All three names share the first content line of the row.
	var nameLine string
	for _, line := range strings.Split(page.viewport.View(), "\n") {
		if strings.Contains(line, "Bob") {
			nameLine = line
			break
		}
	}
	assert.Contains(t, nameLine, "Ann")
	assert.Contains(t, nameLine, "Carol")

	// Down moves by a full row, so it stays put with a single row.
	page = press(t, page, "down")
	assert.Equal(t, 0, page.selected)
	page = press(t, page, "l")
	assert.Equal(t, 1, page.selected)
}
