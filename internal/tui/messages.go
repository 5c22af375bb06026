package tui

import "github.com/mmcdole/dokusha/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// BooksMsg carries a freshly composed view for one tab
type BooksMsg struct {
	ShowCompleted bool
	Books         []domain.BookWithProgress
}

// CompletionSavedMsg reports the outcome of a completion change
type CompletionSavedMsg struct {
	Book      domain.Book
	Completed bool
	Err       error
}

// ChaptersLoadedMsg carries a book's chapter list. Refresh results only
// update a list that is already open.
type ChaptersLoadedMsg struct {
	Book     domain.Book
	Chapters []domain.Chapter
	Refresh  bool
	Err      error
}

// ChaptersChangedMsg reports the outcome of a read-mark change
type ChaptersChangedMsg struct {
	Book domain.Book
	Err  error
}

// PreferenceChangedMsg reports a new read setting value, from a cycle or a
// config reload
type PreferenceChangedMsg struct {
	Key   domain.PreferenceKey
	State domain.TernaryState
	Err   error
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}
