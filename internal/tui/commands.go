package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/library"
)

// Command factories for async operations

// SetCompletedCmd saves a completion flag and reports the result
func SetCompletedCmd(ctx context.Context, page *library.Page, book domain.Book, completed bool) tea.Cmd {
	return func() tea.Msg {
		err := <-page.SetCompleted(ctx, book, completed)
		return CompletionSavedMsg{Book: book, Completed: completed, Err: err}
	}
}

// CycleFilterReadCmd advances the read filter
func CycleFilterReadCmd(ctx context.Context, page *library.Page) tea.Cmd {
	return func() tea.Msg {
		state, err := page.CycleFilterRead(ctx)
		return PreferenceChangedMsg{Key: domain.PrefLibraryFilterRead, State: state, Err: err}
	}
}

// CycleSortReadCmd advances the read sort
func CycleSortReadCmd(ctx context.Context, page *library.Page) tea.Cmd {
	return func() tea.Msg {
		state, err := page.CycleSortRead(ctx)
		return PreferenceChangedMsg{Key: domain.PrefLibrarySortRead, State: state, Err: err}
	}
}

// LoadChaptersCmd loads the chapter list of book
func LoadChaptersCmd(ctx context.Context, svc *library.Chapters, book domain.Book, refresh bool) tea.Cmd {
	return func() tea.Msg {
		chapters, err := svc.List(ctx, book)
		return ChaptersLoadedMsg{Book: book, Chapters: chapters, Refresh: refresh, Err: err}
	}
}

// SetChapterReadCmd marks one chapter read or unread
func SetChapterReadCmd(ctx context.Context, svc *library.Chapters, book domain.Book, chapter domain.Chapter, read bool) tea.Cmd {
	return func() tea.Msg {
		return ChaptersChangedMsg{Book: book, Err: svc.SetRead(ctx, chapter, read)}
	}
}

// SetAllReadCmd marks every chapter of book read or unread
func SetAllReadCmd(ctx context.Context, svc *library.Chapters, book domain.Book, read bool) tea.Cmd {
	return func() tea.Msg {
		return ChaptersChangedMsg{Book: book, Err: svc.SetAllRead(ctx, book, read)}
	}
}

// ClearStatusCmd returns a command that clears the status after delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
