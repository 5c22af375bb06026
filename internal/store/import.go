package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mmcdole/dokusha/internal/domain"
)

// importBook is the JSON shape accepted by Import
type importBook struct {
	domain.Book
	Chapters []domain.Chapter `json:"chapters"`
}

// Import reads a JSON array of books (each with an optional "chapters"
// array) and upserts them in a single transaction. Returns the number of
// books written.
func (s *LibraryStore) Import(ctx context.Context, r io.Reader) (int, error) {
	var books []importBook
	if err := json.NewDecoder(r).Decode(&books); err != nil {
		return 0, fmt.Errorf("failed to decode import: %w", err)
	}

	err := s.mutate(ctx, func() ([]op, error) {
		var ops []op
		for _, b := range books {
			if b.URL == "" {
				return nil, fmt.Errorf("import: book %q has no url", b.Title)
			}
			o, err := putOp(bucketBooks, b.URL, b.Book)
			if err != nil {
				return nil, err
			}
			ops = append(ops, o)

			if b.Chapters != nil {
				chapterOps, err := s.chapterPutOps(b.URL, b.Chapters)
				if err != nil {
					return nil, err
				}
				ops = append(ops, chapterOps...)
			}
		}
		return ops, nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("imported books", "count", len(books))
	return len(books), nil
}
