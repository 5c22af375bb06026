package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/tui/styles"
)

// CompletionDialog asks whether a book is completed, using a single checkbox
type CompletionDialog struct {
	visible bool
	book    domain.Book
	checked bool
}

// NewCompletionDialog creates a hidden dialog
func NewCompletionDialog() CompletionDialog {
	return CompletionDialog{}
}

// Show displays the dialog for book, with the checkbox reflecting its
// current flag
func (d *CompletionDialog) Show(book domain.Book) {
	d.visible = true
	d.book = book
	d.checked = book.Completed
}

// Hide dismisses the dialog
func (d *CompletionDialog) Hide() {
	d.visible = false
}

// IsVisible returns whether the dialog is shown
func (d CompletionDialog) IsVisible() bool {
	return d.visible
}

// Book returns the book the dialog was opened for
func (d CompletionDialog) Book() domain.Book {
	return d.book
}

// Checked returns the checkbox state
func (d CompletionDialog) Checked() bool {
	return d.checked
}

// Update handles input events, returns (dialog, submitted).
// Space or x toggles, enter confirms, esc cancels.
func (d CompletionDialog) Update(msg tea.Msg) (CompletionDialog, bool) {
	if !d.visible {
		return d, false
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, false
	}

	switch keyMsg.String() {
	case " ", "x":
		d.checked = !d.checked
	case "enter":
		d.Hide()
		return d, true
	case "esc", "q":
		d.Hide()
	}
	return d, false
}

// View renders the dialog
func (d CompletionDialog) View() string {
	if !d.visible {
		return ""
	}

	const dialogWidth = 36

	box := "[ ]"
	if d.checked {
		box = styles.AccentStyle.Render("[x]")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Width(dialogWidth).Render(styles.Truncate(d.book.Title, dialogWidth)),
		box+" Completed",
		"",
		styles.DimStyle.Render("space toggle · enter save · esc cancel"),
	)

	return styles.ModalStyle.Render(content)
}
