package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mmcdole/dokusha/internal/domain"
)

// === Library observation ===

// ObserveLibrary streams every in-library book with chapter counts,
// ordered by title. The current snapshot is delivered first.
func (s *LibraryStore) ObserveLibrary(ctx context.Context) <-chan []domain.BookWithProgress {
	return s.library.Subscribe(ctx)
}

// Snapshot returns the current library contents
func (s *LibraryStore) Snapshot(ctx context.Context) ([]domain.BookWithProgress, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	return s.snapshot()
}

func (s *LibraryStore) snapshot() ([]domain.BookWithProgress, error) {
	var books []domain.Book
	err := s.scan(bucketBooks, "", func(_ string, data []byte) error {
		var b domain.Book
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		if b.InLibrary {
			books = append(books, b)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read books: %w", err)
	}

	sort.SliceStable(books, func(i, j int) bool {
		ti, tj := strings.ToLower(books[i].Title), strings.ToLower(books[j].Title)
		if ti != tj {
			return ti < tj
		}
		return books[i].URL < books[j].URL
	})

	out := make([]domain.BookWithProgress, 0, len(books))
	for _, b := range books {
		total, read, err := s.countChapters(b.URL)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.BookWithProgress{
			Book:              b,
			ChaptersCount:     total,
			ChaptersReadCount: read,
		})
	}
	return out, nil
}

func (s *LibraryStore) countChapters(bookURL string) (total, read int, err error) {
	err = s.scan(bucketChapters, chapterPrefix(bookURL), func(_ string, data []byte) error {
		var c domain.Chapter
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		total++
		if c.Read {
			read++
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count chapters: %w", err)
	}
	return total, read, nil
}

// publish recomputes the library snapshot and hands it to subscribers
func (s *LibraryStore) publish() error {
	snap, err := s.snapshot()
	if err != nil {
		s.logger.Error("failed to build library snapshot", "error", err)
		return err
	}
	s.library.Publish(snap)
	s.logger.Debug("published library snapshot", "count", len(snap))
	return nil
}

// mutate serializes a write, applies its ops, and republishes the library
func (s *LibraryStore) mutate(ctx context.Context, build func() ([]op, error)) error {
	if err := s.checkOpen(ctx); err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	ops, err := build()
	if err != nil {
		return err
	}
	if err := s.apply(ops); err != nil {
		return fmt.Errorf("failed to write library: %w", err)
	}
	return s.publish()
}

// === Books ===

// Get returns a single book by URL
func (s *LibraryStore) Get(ctx context.Context, url string) (domain.Book, error) {
	if err := s.checkOpen(ctx); err != nil {
		return domain.Book{}, err
	}
	var b domain.Book
	if !s.get(bucketBooks, url, &b) {
		return domain.Book{}, fmt.Errorf("%w: %s", domain.ErrBookNotFound, url)
	}
	return b, nil
}

// Add inserts or replaces a book
func (s *LibraryStore) Add(ctx context.Context, book domain.Book) error {
	return s.mutate(ctx, func() ([]op, error) {
		o, err := putOp(bucketBooks, book.URL, book)
		if err != nil {
			return nil, err
		}
		return []op{o}, nil
	})
}

// Update persists a changed book. The book must already exist.
func (s *LibraryStore) Update(ctx context.Context, book domain.Book) error {
	return s.mutate(ctx, func() ([]op, error) {
		var existing domain.Book
		if !s.get(bucketBooks, book.URL, &existing) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBookNotFound, book.URL)
		}
		o, err := putOp(bucketBooks, book.URL, book)
		if err != nil {
			return nil, err
		}
		return []op{o}, nil
	})
}

// Remove deletes a book and all of its chapters
func (s *LibraryStore) Remove(ctx context.Context, url string) error {
	return s.mutate(ctx, func() ([]op, error) {
		var existing domain.Book
		if !s.get(bucketBooks, url, &existing) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBookNotFound, url)
		}
		ops, err := s.chapterDeleteOps(url)
		if err != nil {
			return nil, err
		}
		return append(ops, deleteOp(bucketBooks, url)), nil
	})
}

// === Chapters ===

// Chapters returns a book's chapters ordered by position
func (s *LibraryStore) Chapters(ctx context.Context, bookURL string) ([]domain.Chapter, error) {
	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	var chapters []domain.Chapter
	err := s.scan(bucketChapters, chapterPrefix(bookURL), func(_ string, data []byte) error {
		var c domain.Chapter
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}
		chapters = append(chapters, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read chapters: %w", err)
	}
	sort.SliceStable(chapters, func(i, j int) bool {
		return chapters[i].Position < chapters[j].Position
	})
	return chapters, nil
}

// SaveChapters replaces the chapter list of a book.
// Chapter BookURL fields are overwritten with bookURL.
func (s *LibraryStore) SaveChapters(ctx context.Context, bookURL string, chapters []domain.Chapter) error {
	return s.mutate(ctx, func() ([]op, error) {
		var existing domain.Book
		if !s.get(bucketBooks, bookURL, &existing) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBookNotFound, bookURL)
		}
		return s.chapterPutOps(bookURL, chapters)
	})
}

// SetChapterRead marks a chapter read or unread
func (s *LibraryStore) SetChapterRead(ctx context.Context, chapterURL string, read bool) error {
	return s.mutate(ctx, func() ([]op, error) {
		var bookURL string
		if !s.get(bucketChapterIndex, chapterURL, &bookURL) {
			return nil, fmt.Errorf("%w: %s", domain.ErrChapterNotFound, chapterURL)
		}
		var c domain.Chapter
		if !s.get(bucketChapters, chapterKey(bookURL, chapterURL), &c) {
			return nil, fmt.Errorf("%w: %s", domain.ErrChapterNotFound, chapterURL)
		}
		c.Read = read
		o, err := putOp(bucketChapters, chapterKey(bookURL, chapterURL), c)
		if err != nil {
			return nil, err
		}
		return []op{o}, nil
	})
}

func (s *LibraryStore) chapterDeleteOps(bookURL string) ([]op, error) {
	ops, err := s.deletePrefixOps(bucketChapters, chapterPrefix(bookURL))
	if err != nil {
		return nil, err
	}
	prefix := chapterPrefix(bookURL)
	for _, o := range append([]op(nil), ops...) {
		ops = append(ops, deleteOp(bucketChapterIndex, strings.TrimPrefix(o.key, prefix)))
	}
	return ops, nil
}

func (s *LibraryStore) chapterPutOps(bookURL string, chapters []domain.Chapter) ([]op, error) {
	ops, err := s.chapterDeleteOps(bookURL)
	if err != nil {
		return nil, err
	}
	for i, c := range chapters {
		c.BookURL = bookURL
		if c.Position == 0 {
			c.Position = i + 1
		}
		o, err := putOp(bucketChapters, chapterKey(bookURL, c.URL), c)
		if err != nil {
			return nil, err
		}
		idx, err := putOp(bucketChapterIndex, c.URL, bookURL)
		if err != nil {
			return nil, err
		}
		ops = append(ops, o, idx)
	}
	return ops, nil
}
