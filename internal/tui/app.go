package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/library"
	"github.com/mmcdole/dokusha/internal/tui/components"
	"github.com/mmcdole/dokusha/internal/tui/styles"
)

// Tab identifies one library page
type Tab int

const (
	TabReading Tab = iota
	TabCompleted
)

// String returns the tab label
func (t Tab) String() string {
	if t == TabCompleted {
		return "Completed"
	}
	return "Reading"
}

func tabFor(showCompleted bool) Tab {
	if showCompleted {
		return TabCompleted
	}
	return TabReading
}

// Header + footer lines around the grid
const chromeLines = 3

// Options configures the model
type Options struct {
	Columns int // 0 = pick from width
	Tab     Tab
}

// Model is the main Bubble Tea model for the application
type Model struct {
	ctx context.Context

	// Pages, indexed by Tab
	Pages    [2]*library.Page
	Chapters *library.Chapters

	// UI Components
	Grids       [2]components.Grid
	Dialog      components.CompletionDialog
	ChapterList components.ChapterList

	// Read settings shown in the footer
	FilterRead domain.TernaryState
	SortRead   domain.TernaryState

	// Dimensions
	Width  int
	Height int

	// UI state
	Tab         Tab
	Loaded      [2]bool
	ShowHelp    bool
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model. Views arrive later through
// BooksMsg, see ForwardBooks.
func NewModel(ctx context.Context, reading, completed *library.Page, chapters *library.Chapters, opts Options) Model {
	filterRead, sortRead := reading.ReadPreferences()
	return Model{
		ctx:      ctx,
		Pages:    [2]*library.Page{reading, completed},
		Chapters: chapters,
		Grids: [2]components.Grid{
			components.NewGrid(opts.Columns, "No books in progress. Import some with -import."),
			components.NewGrid(opts.Columns, "No completed books yet."),
		},
		Dialog:      components.NewCompletionDialog(),
		ChapterList: components.NewChapterList(),
		FilterRead:  filterRead,
		SortRead:    sortRead,
		Tab:         opts.Tab,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case BooksMsg:
		t := tabFor(msg.ShowCompleted)
		m.Grids[t].SetBooks(msg.Books)
		m.Loaded[t] = true
		return m, nil

	case CompletionSavedMsg:
		if msg.Err != nil {
			m.StatusMsg = ErrMsg{Err: msg.Err, Context: "updating " + msg.Book.Title}.Error()
			m.StatusIsErr = true
			return m, ClearStatusCmd(5 * time.Second)
		}
		if msg.Completed {
			m.StatusMsg = "Marked completed: " + msg.Book.Title
		} else {
			m.StatusMsg = "Back to reading: " + msg.Book.Title
		}
		m.StatusIsErr = false
		return m, ClearStatusCmd(3 * time.Second)

	case ChaptersLoadedMsg:
		if msg.Err != nil {
			m.StatusMsg = ErrMsg{Err: msg.Err, Context: "loading chapters"}.Error()
			m.StatusIsErr = true
			return m, ClearStatusCmd(5 * time.Second)
		}
		if msg.Refresh {
			if m.ChapterList.IsVisible() && m.ChapterList.Book().URL == msg.Book.URL {
				m.ChapterList.SetChapters(msg.Chapters)
			}
			return m, nil
		}
		m.ChapterList.Show(msg.Book, msg.Chapters)
		return m, nil

	case ChaptersChangedMsg:
		cmd := LoadChaptersCmd(m.ctx, m.Chapters, msg.Book, true)
		if msg.Err != nil {
			m.StatusMsg = ErrMsg{Err: msg.Err, Context: "marking chapters of " + msg.Book.Title}.Error()
			m.StatusIsErr = true
			return m, tea.Batch(cmd, ClearStatusCmd(5*time.Second))
		}
		return m, cmd

	case PreferenceChangedMsg:
		switch msg.Key {
		case domain.PrefLibraryFilterRead:
			m.FilterRead = msg.State
		case domain.PrefLibrarySortRead:
			m.SortRead = msg.State
		}
		if msg.Err != nil {
			m.StatusMsg = ErrMsg{Err: msg.Err, Context: "saving " + string(msg.Key)}.Error()
			m.StatusIsErr = true
			return m, ClearStatusCmd(5 * time.Second)
		}
		return m, nil

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.ShowHelp {
		m.ShowHelp = false
		return m, nil
	}

	if m.ChapterList.IsVisible() {
		var action components.ChapterAction
		m.ChapterList, action = m.ChapterList.Update(msg)
		book := m.ChapterList.Book()
		switch action {
		case components.ChapterToggleRead:
			ch, _ := m.ChapterList.Selected()
			return m, SetChapterReadCmd(m.ctx, m.Chapters, book, ch, !ch.Read)
		case components.ChapterToggleAll:
			read := !library.AllRead(m.ChapterList.Chapters())
			return m, SetAllReadCmd(m.ctx, m.Chapters, book, read)
		}
		return m, nil
	}

	if m.Dialog.IsVisible() {
		var submitted bool
		m.Dialog, submitted = m.Dialog.Update(msg)
		if submitted {
			return m, SetCompletedCmd(m.ctx, m.Pages[m.Tab], m.Dialog.Book(), m.Dialog.Checked())
		}
		return m, nil
	}

	grid := &m.Grids[m.Tab]
	if grid.IsFilterTyping() {
		var cmd tea.Cmd
		*grid, cmd = grid.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Escape):
		if grid.IsFiltering() {
			grid.ClearFilter()
		}

	case key.Matches(msg, Keys.Help):
		m.ShowHelp = true

	case key.Matches(msg, Keys.NextTab):
		m.Tab = 1 - m.Tab

	case key.Matches(msg, Keys.Up):
		grid.MoveUp()
	case key.Matches(msg, Keys.Down):
		grid.MoveDown()
	case key.Matches(msg, Keys.Left):
		grid.MoveLeft()
	case key.Matches(msg, Keys.Right):
		grid.MoveRight()
	case key.Matches(msg, Keys.Home):
		grid.SetCursor(0)
	case key.Matches(msg, Keys.End):
		grid.SetCursor(grid.Len() - 1)

	case key.Matches(msg, Keys.Filter):
		grid.ToggleFilter()

	case key.Matches(msg, Keys.CycleFilter):
		return m, CycleFilterReadCmd(m.ctx, m.Pages[m.Tab])
	case key.Matches(msg, Keys.CycleSort):
		return m, CycleSortReadCmd(m.ctx, m.Pages[m.Tab])

	case key.Matches(msg, Keys.Open):
		if book, ok := grid.Selected(); ok {
			return m, LoadChaptersCmd(m.ctx, m.Chapters, book.Book, false)
		}

	case key.Matches(msg, Keys.Completion):
		if book, ok := grid.Selected(); ok {
			m.Dialog.Show(book.Book)
		}
	}

	return m, nil
}

func (m *Model) updateLayout() {
	h := m.Height - chromeLines
	if h < 1 {
		h = 1
	}
	for i := range m.Grids {
		m.Grids[i].SetSize(m.Width, h)
	}
	m.ChapterList.SetSize(m.Width, m.Height)
}

// View renders the application
func (m Model) View() string {
	if m.ShowHelp {
		return m.renderHelp()
	}

	body := m.Grids[m.Tab].View()
	if !m.Loaded[m.Tab] {
		body = styles.DimStyle.Render("Loading...")
	}

	view := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderFooter(),
	)

	if m.ChapterList.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.ChapterList.View())
	}

	if m.Dialog.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.Dialog.View())
	}

	return view
}

func (m Model) renderHeader() string {
	tabs := make([]string, 0, 2)
	for _, t := range []Tab{TabReading, TabCompleted} {
		label := t.String()
		if m.Loaded[t] {
			label = fmt.Sprintf("%s (%d)", label, len(m.Grids[t].Books()))
		}
		if t == m.Tab {
			tabs = append(tabs, styles.ActiveTabStyle.Render(label))
		} else {
			tabs = append(tabs, styles.InactiveTabStyle.Render(label))
		}
	}
	return styles.TitleStyle.Render("dokusha ") + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderFooter renders status on the left and the read settings on the right
func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.SuccessStyle.Render(m.StatusMsg)
		}
	}

	right := styles.AccentStyle.Render("f") + styles.DimStyle.Render(" unread filter: "+m.FilterRead.String()+"  ") +
		styles.AccentStyle.Render("s") + styles.DimStyle.Render(" unread sort: "+m.SortRead.String()+"  ") +
		styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	return styles.FillWidth(left, right, m.Width)
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
NAVIGATION                      LIBRARY
  h/j/k/l    Move                  f      Cycle unread filter
  g/G        First/last            s      Cycle unread sort
  Tab        Reading/Completed     c      Mark completed
  /          Find by title         Enter  Chapters

CHAPTERS
  Space      Toggle read           a      Toggle all

  q          Quit                  ?      This help

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}
