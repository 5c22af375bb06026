package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/library"
)

// Sender delivers messages into a running program (tea.Program.Send)
type Sender func(tea.Msg)

// ForwardBooks pushes every composed view of page into send until ctx is
// done or the page stream ends.
func ForwardBooks(ctx context.Context, page *library.Page, send Sender) error {
	for books := range page.Books(ctx) {
		send(BooksMsg{ShowCompleted: page.ShowCompleted(), Books: books})
	}
	return nil
}

// ForwardPreferences pushes every value of one read setting into send, so
// edits picked up from the config file reach the footer.
func ForwardPreferences(ctx context.Context, prefs domain.PreferenceStore, key domain.PreferenceKey, send Sender) error {
	for state := range prefs.Observe(ctx, key) {
		send(PreferenceChangedMsg{Key: key, State: state})
	}
	return nil
}
