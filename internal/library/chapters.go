package library

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/dokusha/internal/domain"
)

// Chapters manages the read progress of a book's chapters. Every change is
// written through the store, so open library pages re-compose on their own.
type Chapters struct {
	store  domain.ChapterStore
	logger *slog.Logger
}

// NewChapters creates a chapter service
func NewChapters(store domain.ChapterStore, logger *slog.Logger) *Chapters {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chapters{store: store, logger: logger.With("component", "chapters")}
}

// List returns the chapters of book in reading order
func (c *Chapters) List(ctx context.Context, book domain.Book) ([]domain.Chapter, error) {
	chapters, err := c.store.Chapters(ctx, book.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load chapters of %s: %w", book.URL, err)
	}
	return chapters, nil
}

// SetRead marks one chapter read or unread
func (c *Chapters) SetRead(ctx context.Context, chapter domain.Chapter, read bool) error {
	if err := c.store.SetChapterRead(ctx, chapter.URL, read); err != nil {
		c.logger.Error("failed to mark chapter", "error", err, "url", chapter.URL)
		return err
	}
	c.logger.Info("marked chapter", "url", chapter.URL, "read", read)
	return nil
}

// SetAllRead marks every chapter of book read or unread in one write
func (c *Chapters) SetAllRead(ctx context.Context, book domain.Book, read bool) error {
	chapters, err := c.List(ctx, book)
	if err != nil {
		return err
	}
	for i := range chapters {
		chapters[i].Read = read
	}
	if err := c.store.SaveChapters(ctx, book.URL, chapters); err != nil {
		c.logger.Error("failed to mark chapters", "error", err, "url", book.URL)
		return err
	}
	c.logger.Info("marked all chapters", "url", book.URL, "count", len(chapters), "read", read)
	return nil
}

// AllRead reports whether every chapter in the list is read
func AllRead(chapters []domain.Chapter) bool {
	for _, ch := range chapters {
		if !ch.Read {
			return false
		}
	}
	return true
}
