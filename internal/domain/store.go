package domain

import "context"

// BookStore owns books and their chapters.
// Observe methods emit the current snapshot first, then a new snapshot after
// every mutation. Channels close when ctx is done or the store is closed.
type BookStore interface {
	// ObserveLibrary streams every in-library book with its chapter counts
	ObserveLibrary(ctx context.Context) <-chan []BookWithProgress

	// Update persists a changed book. Returns ErrBookNotFound for unknown URLs.
	Update(ctx context.Context, book Book) error
}

// ChapterStore owns the chapter lists of books
type ChapterStore interface {
	// Chapters returns a book's chapters ordered by position
	Chapters(ctx context.Context, bookURL string) ([]Chapter, error)

	// SaveChapters replaces a book's chapter list
	SaveChapters(ctx context.Context, bookURL string, chapters []Chapter) error

	// SetChapterRead marks one chapter. Returns ErrChapterNotFound for
	// unknown URLs.
	SetChapterRead(ctx context.Context, chapterURL string, read bool) error
}

// PreferenceStore owns the ternary user settings
type PreferenceStore interface {
	// Observe streams the value of one setting, current value first
	Observe(ctx context.Context, key PreferenceKey) <-chan TernaryState

	// Get returns the current value of a setting
	Get(key PreferenceKey) TernaryState

	// Set persists a new value of a setting
	Set(ctx context.Context, key PreferenceKey, state TernaryState) error

	// Cycle advances a setting to its Next value and persists it as one
	// atomic step. Returns the value in effect afterwards.
	Cycle(ctx context.Context, key PreferenceKey) (TernaryState, error)
}
