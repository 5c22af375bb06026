package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/tui/styles"
)

// ChapterAction is what the user asked for in the chapter list
type ChapterAction int

const (
	ChapterNone ChapterAction = iota
	ChapterToggleRead
	ChapterToggleAll
)

// Rows taken by title, spacer and hint lines
const chapterChromeLines = 4

// ChapterList is a modal list of one book's chapters with read marks
type ChapterList struct {
	visible  bool
	book     domain.Book
	chapters []domain.Chapter

	cursor int
	offset int

	width  int
	height int
}

// NewChapterList creates a hidden chapter list
func NewChapterList() ChapterList {
	return ChapterList{}
}

// Show opens the list for book
func (c *ChapterList) Show(book domain.Book, chapters []domain.Chapter) {
	c.visible = true
	c.book = book
	c.cursor = 0
	c.offset = 0
	c.chapters = chapters
}

// SetChapters refreshes the content, keeping the cursor on the same chapter
func (c *ChapterList) SetChapters(chapters []domain.Chapter) {
	var prev string
	if ch, ok := c.Selected(); ok {
		prev = ch.URL
	}
	c.chapters = chapters
	for i, ch := range chapters {
		if ch.URL == prev {
			c.cursor = i
			c.ensureVisible()
			return
		}
	}
	c.setCursor(c.cursor)
}

// Hide dismisses the list
func (c *ChapterList) Hide() {
	c.visible = false
}

// IsVisible returns whether the list is shown
func (c ChapterList) IsVisible() bool {
	return c.visible
}

// Book returns the book the list was opened for
func (c ChapterList) Book() domain.Book {
	return c.book
}

// Chapters returns the listed chapters
func (c ChapterList) Chapters() []domain.Chapter {
	return c.chapters
}

// Selected returns the chapter under the cursor
func (c ChapterList) Selected() (domain.Chapter, bool) {
	if c.cursor < 0 || c.cursor >= len(c.chapters) {
		return domain.Chapter{}, false
	}
	return c.chapters[c.cursor], true
}

// SetSize updates the available screen area
func (c *ChapterList) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.ensureVisible()
}

func (c ChapterList) visibleRows() int {
	rows := c.height - chapterChromeLines - BorderHeight - 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (c *ChapterList) setCursor(pos int) {
	if pos >= len(c.chapters) {
		pos = len(c.chapters) - 1
	}
	if pos < 0 {
		pos = 0
	}
	c.cursor = pos
	c.ensureVisible()
}

func (c *ChapterList) ensureVisible() {
	rows := c.visibleRows()
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+rows {
		c.offset = c.cursor - rows + 1
	}
}

// Update handles input events, returns (list, action).
// j/k move, space or x toggles the chapter, a toggles all, esc closes.
func (c ChapterList) Update(msg tea.Msg) (ChapterList, ChapterAction) {
	if !c.visible {
		return c, ChapterNone
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, ChapterNone
	}

	switch keyMsg.String() {
	case "j", "down":
		c.setCursor(c.cursor + 1)
	case "k", "up":
		c.setCursor(c.cursor - 1)
	case "g", "home":
		c.setCursor(0)
	case "G", "end":
		c.setCursor(len(c.chapters) - 1)
	case " ", "x":
		if _, ok := c.Selected(); ok {
			return c, ChapterToggleRead
		}
	case "a":
		if len(c.chapters) > 0 {
			return c, ChapterToggleAll
		}
	case "esc", "q", "h", "left":
		c.Hide()
	}
	return c, ChapterNone
}

// View renders the list
func (c ChapterList) View() string {
	if !c.visible {
		return ""
	}

	width := c.width - 10
	if width > 60 {
		width = 60
	}
	if width < 20 {
		width = 20
	}

	read := 0
	for _, ch := range c.chapters {
		if ch.Read {
			read++
		}
	}
	title := fmt.Sprintf("%s  %d/%d read", styles.Truncate(c.book.Title, width-12), read, len(c.chapters))

	var rows []string
	if len(c.chapters) == 0 {
		rows = append(rows, styles.DimStyle.Render("No chapters"))
	}
	end := c.offset + c.visibleRows()
	if end > len(c.chapters) {
		end = len(c.chapters)
	}
	for i := c.offset; i < end; i++ {
		ch := c.chapters[i]
		mark := styles.AccentStyle.Render("●")
		if ch.Read {
			mark = styles.CompletedMarkStyle.Render("✓")
		}
		name := ch.Title
		if name == "" {
			name = ch.URL
		}
		line := mark + " " + styles.Truncate(name, width-4)
		if i == c.cursor {
			line = styles.AccentStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		rows = append(rows, line)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render(title),
		strings.Join(rows, "\n"),
		"",
		styles.DimStyle.Render("space read · a all · esc close"),
	)

	return styles.ModalStyle.Width(width).Render(content)
}
