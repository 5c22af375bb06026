package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/library"
	"github.com/mmcdole/dokusha/internal/search"
)

// printLibrary writes the first composed view of page, optionally narrowed
// to titles matching query, as aligned text
func printLibrary(ctx context.Context, w io.Writer, page *library.Page, query string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	books, ok := <-page.Books(ctx)
	if !ok {
		return ctx.Err()
	}
	if query != "" {
		books = search.Rank(query, books)
	}
	return writeBooks(w, books)
}

func writeBooks(w io.Writer, books []domain.BookWithProgress) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UNREAD\tTITLE\tURL")
	for _, b := range books {
		badge := b.UnreadBadge()
		if badge == "" {
			badge = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", badge, b.Book.Title, b.Book.URL)
	}
	return tw.Flush()
}
