package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/search"
	"github.com/mmcdole/dokusha/internal/tui/styles"
)

// Layout constants for grid
const (
	// Border adds 1 char on each side
	BorderWidth  = 2
	BorderHeight = 2

	// Padding inside the border (Padding(0,1) = 1 left + 1 right)
	HorizontalPadding = 2

	// Title line + badge line
	CardLines = 2

	// Terminals narrower than this get the narrow column count
	WideThreshold = 80
	NarrowColumns = 2
	WideColumns   = 4
)

// Grid lays out library books as a grid of cards
type Grid struct {
	books []domain.BookWithProgress
	index *search.Index
	shown []search.Match

	// Selection
	cursor    int
	rowOffset int

	// Dimensions
	width   int
	height  int
	columns int // 0 = pick from width

	emptyText string

	// Filter state
	filterActive bool
	filterInput  textinput.Model
}

// NewGrid creates an empty grid. columns <= 0 selects the count from the
// terminal width.
func NewGrid(columns int, emptyText string) Grid {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return Grid{
		index:       search.NewIndex(nil),
		columns:     columns,
		emptyText:   emptyText,
		filterInput: ti,
	}
}

// SetBooks replaces the content. The cursor stays on the same book when it
// is still present.
func (g *Grid) SetBooks(books []domain.BookWithProgress) {
	prev, hadPrev := g.Selected()

	g.books = books
	g.index = search.NewIndex(books)
	g.applyFilter()

	if hadPrev {
		for i, m := range g.shown {
			if domain.SameItem(m.Book, prev) {
				g.cursor = i
				g.ensureVisible()
				return
			}
		}
	}
	g.SetCursor(g.cursor)
}

// Books returns the unfiltered content
func (g Grid) Books() []domain.BookWithProgress {
	return g.books
}

// Len returns the number of visible cards
func (g Grid) Len() int {
	return len(g.shown)
}

// SetSize updates the component dimensions
func (g *Grid) SetSize(width, height int) {
	g.width = width
	g.height = height
	g.filterInput.Width = width - 4
	g.ensureVisible()
}

// Columns returns the effective column count
func (g Grid) Columns() int {
	if g.columns > 0 {
		return g.columns
	}
	if g.width < WideThreshold {
		return NarrowColumns
	}
	return WideColumns
}

// visibleRows returns how many card rows fit in the current height
func (g Grid) visibleRows() int {
	h := g.height
	if g.filterActive {
		h--
	}
	rows := h / (CardLines + BorderHeight)
	if rows < 1 {
		rows = 1
	}
	return rows
}

// Cursor returns the current cursor position
func (g Grid) Cursor() int {
	return g.cursor
}

// SetCursor sets the cursor position, clamped to the content
func (g *Grid) SetCursor(pos int) {
	max := len(g.shown) - 1
	if max < 0 {
		g.cursor = 0
		g.rowOffset = 0
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > max {
		pos = max
	}
	g.cursor = pos
	g.ensureVisible()
}

// Selected returns the book under the cursor
func (g Grid) Selected() (domain.BookWithProgress, bool) {
	if g.cursor < 0 || g.cursor >= len(g.shown) {
		return domain.BookWithProgress{}, false
	}
	return g.shown[g.cursor].Book, true
}

// MoveLeft moves the cursor one card back
func (g *Grid) MoveLeft() { g.SetCursor(g.cursor - 1) }

// MoveRight moves the cursor one card forward
func (g *Grid) MoveRight() { g.SetCursor(g.cursor + 1) }

// MoveUp moves the cursor one row up
func (g *Grid) MoveUp() {
	if g.cursor-g.Columns() >= 0 {
		g.SetCursor(g.cursor - g.Columns())
	}
}

// MoveDown moves the cursor one row down, landing on the last card of a
// short final row
func (g *Grid) MoveDown() {
	cols := g.Columns()
	if g.cursor/cols < (len(g.shown)-1)/cols {
		g.SetCursor(g.cursor + cols)
	}
}

// ensureVisible scrolls so the cursor row is on screen
func (g *Grid) ensureVisible() {
	row := g.cursor / g.Columns()
	rows := g.visibleRows()
	if row < g.rowOffset {
		g.rowOffset = row
	}
	if row >= g.rowOffset+rows {
		g.rowOffset = row - rows + 1
	}
}

// ToggleFilter activates the filter input
func (g *Grid) ToggleFilter() {
	g.filterActive = true
	g.filterInput.Focus()
	g.ensureVisible()
}

// IsFiltering returns true if filter mode is active
func (g Grid) IsFiltering() bool {
	return g.filterActive
}

// IsFilterTyping returns true if filter is active AND input is focused
func (g Grid) IsFilterTyping() bool {
	return g.filterActive && g.filterInput.Focused()
}

// FilterQuery returns the current filter text
func (g Grid) FilterQuery() string {
	return g.filterInput.Value()
}

// ClearFilter deactivates the filter and shows all books
func (g *Grid) ClearFilter() {
	g.filterActive = false
	g.filterInput.SetValue("")
	g.filterInput.Blur()
	g.applyFilter()
	g.SetCursor(g.cursor)
}

func (g *Grid) applyFilter() {
	g.shown = g.index.Filter(g.filterInput.Value())
}

// Update handles filter input while typing. Enter keeps the results and
// returns to navigation; esc clears the filter.
func (g Grid) Update(msg tea.Msg) (Grid, tea.Cmd) {
	if !g.IsFilterTyping() {
		return g, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			g.ClearFilter()
			return g, nil
		case "enter":
			g.filterInput.Blur()
			return g, nil
		}
	}

	prev := g.filterInput.Value()
	var cmd tea.Cmd
	g.filterInput, cmd = g.filterInput.Update(msg)
	if g.filterInput.Value() != prev {
		g.applyFilter()
		g.cursor = 0
		g.rowOffset = 0
	}
	return g, cmd
}

// View renders the grid
func (g Grid) View() string {
	var sections []string
	if g.filterActive {
		sections = append(sections, g.filterInput.View())
	}

	if len(g.shown) == 0 {
		text := g.emptyText
		if g.filterActive && g.filterInput.Value() != "" {
			text = "No matches"
		}
		sections = append(sections, styles.DimStyle.Render(text))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	cols := g.Columns()
	cardWidth := g.width/cols - BorderWidth
	if cardWidth < HorizontalPadding+4 {
		cardWidth = HorizontalPadding + 4
	}

	first := g.rowOffset * cols
	last := first + g.visibleRows()*cols
	if last > len(g.shown) {
		last = len(g.shown)
	}

	for start := first; start < last; start += cols {
		end := start + cols
		if end > last {
			end = last
		}
		cards := make([]string, 0, cols)
		for i := start; i < end; i++ {
			cards = append(cards, g.renderCard(g.shown[i], i == g.cursor, cardWidth))
		}
		sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (g Grid) renderCard(m search.Match, selected bool, width int) string {
	inner := width - HorizontalPadding
	title := highlightMatches(styles.Truncate(m.Book.Book.Title, inner), m.MatchedIndexes)

	var status string
	if badge := m.Book.UnreadBadge(); badge != "" {
		status = styles.BadgeStyle.Render(badge)
	} else if m.Book.FullyRead() && m.Book.ChaptersCount > 0 {
		status = styles.CompletedMarkStyle.Render("✓")
	}

	style := styles.CardStyle
	if selected {
		style = styles.CardSelectedStyle
	}
	return style.Width(width).Render(title + "\n" + status)
}

// highlightMatches bolds the matched byte offsets of title. Offsets past a
// truncation are dropped.
func highlightMatches(title string, matched []int) string {
	if len(matched) == 0 {
		return title
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	var b strings.Builder
	for i, r := range title {
		if hit[i] {
			b.WriteString(styles.MatchHighlightStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
