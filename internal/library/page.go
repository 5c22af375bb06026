package library

import (
	"context"
	"log/slog"

	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/stream"
)

// Page is the view-model of one library tab (in-progress or completed books).
// It holds no state of its own beyond which tab it serves.
type Page struct {
	books         domain.BookStore
	prefs         domain.PreferenceStore
	showCompleted bool
	logger        *slog.Logger
}

// NewPage creates a library page for completed or in-progress books.
func NewPage(books domain.BookStore, prefs domain.PreferenceStore, showCompleted bool, logger *slog.Logger) *Page {
	if logger == nil {
		logger = slog.Default()
	}
	return &Page{
		books:         books,
		prefs:         prefs,
		showCompleted: showCompleted,
		logger:        logger.With("page", pageName(showCompleted)),
	}
}

// ShowCompleted reports which tab this page serves
func (p *Page) ShowCompleted() bool {
	return p.showCompleted
}

// Books streams the composed view. A new slice is emitted whenever the
// library or either read preference changes. The channel closes with ctx.
func (p *Page) Books(ctx context.Context) <-chan []domain.BookWithProgress {
	return stream.CombineLatest3(ctx,
		p.books.ObserveLibrary(ctx),
		p.prefs.Observe(ctx, domain.PrefLibraryFilterRead),
		p.prefs.Observe(ctx, domain.PrefLibrarySortRead),
		func(books []domain.BookWithProgress, filterRead, sortRead domain.TernaryState) []domain.BookWithProgress {
			view := Compose(books, ViewOptions{
				Completed:  p.showCompleted,
				FilterRead: filterRead,
				SortRead:   sortRead,
			})
			p.logger.Debug("composed library view",
				"books", len(books), "shown", len(view),
				"filterRead", filterRead.String(), "sortRead", sortRead.String())
			return view
		},
	)
}

// SetCompleted persists a new completion flag in the background.
// The returned channel yields exactly one result and is then closed;
// callers that do not care about the outcome may ignore it.
func (p *Page) SetCompleted(ctx context.Context, book domain.Book, completed bool) <-chan error {
	result := make(chan error, 1)

	go func() {
		defer close(result)

		err := p.books.Update(ctx, book.WithCompleted(completed))
		if err != nil {
			p.logger.Error("failed to update completion", "error", err, "url", book.URL)
		} else {
			p.logger.Info("updated completion", "url", book.URL, "completed", completed)
		}
		result <- err
	}()

	return result
}

// CycleFilterRead advances the read filter setting and returns the new value
func (p *Page) CycleFilterRead(ctx context.Context) (domain.TernaryState, error) {
	return p.cycle(ctx, domain.PrefLibraryFilterRead)
}

// CycleSortRead advances the read sort setting and returns the new value
func (p *Page) CycleSortRead(ctx context.Context) (domain.TernaryState, error) {
	return p.cycle(ctx, domain.PrefLibrarySortRead)
}

// ReadPreferences returns the current read filter and read sort settings
func (p *Page) ReadPreferences() (filterRead, sortRead domain.TernaryState) {
	return p.prefs.Get(domain.PrefLibraryFilterRead), p.prefs.Get(domain.PrefLibrarySortRead)
}

func (p *Page) cycle(ctx context.Context, key domain.PreferenceKey) (domain.TernaryState, error) {
	state, err := p.prefs.Cycle(ctx, key)
	if err != nil {
		p.logger.Error("failed to save preference", "error", err, "key", string(key))
	}
	return state, err
}

func pageName(showCompleted bool) string {
	if showCompleted {
		return "completed"
	}
	return "reading"
}
