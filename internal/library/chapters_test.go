package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/store"
)

func newChapterFixture(t *testing.T) (*store.LibraryStore, domain.Book) {
	t.Helper()
	s, err := store.NewLibraryStore("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	book := domain.Book{URL: "b", Title: "Book", InLibrary: true}
	require.NoError(t, s.Add(ctx, book))
	require.NoError(t, s.SaveChapters(ctx, book.URL, []domain.Chapter{
		{URL: "b/1", Title: "One"},
		{URL: "b/2", Title: "Two"},
		{URL: "b/3", Title: "Three"},
	}))
	return s, book
}

func readCount(t *testing.T, s *store.LibraryStore) int {
	t.Helper()
	books, err := s.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	return books[0].ChaptersReadCount
}

func TestChapters_SetReadUpdatesProgress(t *testing.T) {
	s, book := newChapterFixture(t)
	svc := NewChapters(s, nil)
	ctx := context.Background()

	chapters, err := svc.List(ctx, book)
	require.NoError(t, err)
	require.Len(t, chapters, 3)
	assert.Equal(t, "One", chapters[0].Title)

	require.NoError(t, svc.SetRead(ctx, chapters[1], true))
	assert.Equal(t, 1, readCount(t, s))

	require.NoError(t, svc.SetRead(ctx, chapters[1], false))
	assert.Equal(t, 0, readCount(t, s))

	err = svc.SetRead(ctx, domain.Chapter{URL: "missing"}, true)
	assert.ErrorIs(t, err, domain.ErrChapterNotFound)
}

func TestChapters_SetAllRead(t *testing.T) {
	s, book := newChapterFixture(t)
	svc := NewChapters(s, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetAllRead(ctx, book, true))
	assert.Equal(t, 3, readCount(t, s))

	chapters, err := svc.List(ctx, book)
	require.NoError(t, err)
	assert.True(t, AllRead(chapters))
	assert.Equal(t, []string{"b/1", "b/2", "b/3"}, []string{chapters[0].URL, chapters[1].URL, chapters[2].URL})

	require.NoError(t, svc.SetAllRead(ctx, book, false))
	assert.Equal(t, 0, readCount(t, s))

	err = svc.SetAllRead(ctx, domain.Book{URL: "ghost"}, true)
	assert.ErrorIs(t, err, domain.ErrBookNotFound)
}

func TestAllRead(t *testing.T) {
	assert.True(t, AllRead(nil))
	assert.False(t, AllRead([]domain.Chapter{{Read: true}, {Read: false}}))
}
