package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mmcdole/dokusha/internal/store"
)

func importFile(ctx context.Context, w io.Writer, books *store.LibraryStore, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer f.Close()

	n, err := books.Import(ctx, f)
	if err != nil {
		return err
	}
	all, err := books.Snapshot(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Imported %d books (%d in library)\n", n, len(all))
	return nil
}

// removeBook drops a book and its chapters
func removeBook(ctx context.Context, w io.Writer, books *store.LibraryStore, url string) error {
	book, err := books.Get(ctx, url)
	if err != nil {
		return err
	}
	if err := books.Remove(ctx, url); err != nil {
		return fmt.Errorf("failed to remove %s: %w", book.Title, err)
	}
	fmt.Fprintf(w, "Removed %s\n", book.Title)
	return nil
}
