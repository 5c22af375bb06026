package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mmcdole/dokusha/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// storeModes runs a test against the bolt-backed and memory-only stores
func storeModes(t *testing.T, fn func(t *testing.T, s *LibraryStore)) {
	t.Run("bolt", func(t *testing.T) {
		s, err := NewLibraryStore(t.TempDir(), nil)
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
	t.Run("memory", func(t *testing.T) {
		s, err := NewLibraryStore("", nil)
		require.NoError(t, err)
		defer s.Close()
		fn(t, s)
	})
}

func chapters(bookURL string, n, read int) []domain.Chapter {
	out := make([]domain.Chapter, n)
	for i := range out {
		out[i] = domain.Chapter{
			URL:   bookURL + "/ch" + string(rune('a'+i)),
			Title: "Chapter",
			Read:  i < read,
		}
	}
	return out
}

func latest(t *testing.T, ch <-chan []domain.BookWithProgress) []domain.BookWithProgress {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "library channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}

func TestLibraryStore_EmptySnapshot(t *testing.T) {
	storeModes(t, func(t *testing.T, s *LibraryStore) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		snap := latest(t, s.ObserveLibrary(ctx))
		assert.Empty(t, snap)
	})
}

func TestLibraryStore_ProgressAndOrdering(t *testing.T) {
	storeModes(t, func(t *testing.T, s *LibraryStore) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		require.NoError(t, s.Add(ctx, domain.Book{URL: "u2", Title: "beta", InLibrary: true}))
		require.NoError(t, s.Add(ctx, domain.Book{URL: "u1", Title: "Alpha", InLibrary: true}))
		require.NoError(t, s.Add(ctx, domain.Book{URL: "u3", Title: "hidden", InLibrary: false}))
		require.NoError(t, s.SaveChapters(ctx, "u1", chapters("u1", 4, 1)))
		require.NoError(t, s.SaveChapters(ctx, "u2", chapters("u2", 2, 2)))

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snap, 2)

		assert.Equal(t, "u1", snap[0].Book.URL)
		assert.Equal(t, 4, snap[0].ChaptersCount)
		assert.Equal(t, 1, snap[0].ChaptersReadCount)

		assert.Equal(t, "u2", snap[1].Book.URL)
		assert.Equal(t, 2, snap[1].ChaptersCount)
		assert.Equal(t, 2, snap[1].ChaptersReadCount)
	})
}

func TestLibraryStore_UpdateRepublishes(t *testing.T) {
	storeModes(t, func(t *testing.T, s *LibraryStore) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		book := domain.Book{URL: "u1", Title: "Alpha", InLibrary: true}
		require.NoError(t, s.Add(ctx, book))

		updates := s.ObserveLibrary(ctx)
		snap := latest(t, updates)
		require.Len(t, snap, 1)
		assert.False(t, snap[0].Book.Completed)

		require.NoError(t, s.Update(ctx, book.WithCompleted(true)))
		snap = latest(t, updates)
		require.Len(t, snap, 1)
		assert.True(t, snap[0].Book.Completed)

		got, err := s.Get(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, got.Completed)
	})
}

func TestLibraryStore_UpdateUnknownBook(t *testing.T) {
	storeModes(t, func(t *testing.T, s *LibraryStore) {
		err := s.Update(context.Background(), domain.Book{URL: "nope"})
		assert.ErrorIs(t, err, domain.ErrBookNotFound)

		_, err = s.Get(context.Background(), "nope")
		assert.ErrorIs(t, err, domain.ErrBookNotFound)

		err = s.SaveChapters(context.Background(), "nope", chapters("nope", 1, 0))
		assert.ErrorIs(t, err, domain.ErrBookNotFound)
	})
}

func TestLibraryStore_SetChapterRead(t *testing.T) {
	storeModes(t, func(t *testing.T, s *LibraryStore) {
		ctx := context.Background()
		require.NoError(t, s.Add(ctx, domain.Book{URL: "u1", Title: "Alpha", InLibrary: true}))
		chs := chapters("u1", 3, 0)
		require.NoError(t, s.SaveChapters(ctx, "u1", chs))

		require.NoError(t, s.SetChapterRead(ctx, chs[1].URL, true))
		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, snap[0].ChaptersReadCount)

		require.NoError(t, s.SetChapterRead(ctx, chs[1].URL, false))
		snap, err = s.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, snap[0].ChaptersReadCount)

		err = s.SetChapterRead(ctx, "missing", true)
		assert.ErrorIs(t, err, domain.ErrChapterNotFound)
	})
}

func TestLibraryStore_SaveChaptersReplacesAndOrders(t *testing.T) {
	storeModes(t, func(t *testing.T, s *LibraryStore) {
		ctx := context.Background()
		require.NoError(t, s.Add(ctx, domain.Book{URL: "u1", Title: "Alpha", InLibrary: true}))
		require.NoError(t, s.SaveChapters(ctx, "u1", chapters("u1", 5, 0)))

		replacement := []domain.Chapter{
			{URL: "u1/z", Title: "Second", Position: 2},
			{URL: "u1/y", Title: "First", Position: 1},
		}
		require.NoError(t, s.SaveChapters(ctx, "u1", replacement))

		got, err := s.Chapters(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "First", got[0].Title)
		assert.Equal(t, "u1", got[0].BookURL)
		assert.Equal(t, "Second", got[1].Title)

		// Index entries of replaced chapters are gone
		assert.ErrorIs(t, s.SetChapterRead(ctx, "u1/cha", true), domain.ErrChapterNotFound)
	})
}

func TestLibraryStore_RemoveDeletesChapters(t *testing.T) {
	storeModes(t, func(t *testing.T, s *LibraryStore) {
		ctx := context.Background()
		require.NoError(t, s.Add(ctx, domain.Book{URL: "u1", Title: "Alpha", InLibrary: true}))
		require.NoError(t, s.Add(ctx, domain.Book{URL: "u10", Title: "Other", InLibrary: true}))
		require.NoError(t, s.SaveChapters(ctx, "u1", chapters("u1", 2, 1)))
		require.NoError(t, s.SaveChapters(ctx, "u10", chapters("u10", 3, 0)))

		require.NoError(t, s.Remove(ctx, "u1"))
		assert.ErrorIs(t, s.Remove(ctx, "u1"), domain.ErrBookNotFound)

		got, err := s.Chapters(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, got)

		// Sibling with a shared URL prefix keeps its chapters
		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snap, 1)
		assert.Equal(t, 3, snap[0].ChaptersCount)
	})
}

func TestLibraryStore_Import(t *testing.T) {
	storeModes(t, func(t *testing.T, s *LibraryStore) {
		ctx := context.Background()
		input := `[
			{"url": "n1", "title": "Night Walker", "in_library": true,
			 "chapters": [{"url": "n1/1", "read": true}, {"url": "n1/2"}]},
			{"url": "n2", "title": "Done Deal", "in_library": true, "completed": true}
		]`

		n, err := s.Import(ctx, strings.NewReader(input))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		snap, err := s.Snapshot(ctx)
		require.NoError(t, err)
		require.Len(t, snap, 2)
		assert.Equal(t, "n2", snap[0].Book.URL)
		assert.True(t, snap[0].Book.Completed)
		assert.Equal(t, "n1", snap[1].Book.URL)
		assert.Equal(t, 2, snap[1].ChaptersCount)
		assert.Equal(t, 1, snap[1].ChaptersReadCount)
	})
}

func TestLibraryStore_ImportRejectsBadInput(t *testing.T) {
	storeModes(t, func(t *testing.T, s *LibraryStore) {
		_, err := s.Import(context.Background(), strings.NewReader(`{not json`))
		assert.Error(t, err)

		_, err = s.Import(context.Background(), strings.NewReader(`[{"title": "no url"}]`))
		assert.Error(t, err)

		snap, err := s.Snapshot(context.Background())
		require.NoError(t, err)
		assert.Empty(t, snap)
	})
}

func TestLibraryStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewLibraryStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Add(ctx, domain.Book{URL: "u1", Title: "Alpha", InLibrary: true}))
	require.NoError(t, s.SaveChapters(ctx, "u1", chapters("u1", 3, 2)))
	require.NoError(t, s.Close())

	s, err = NewLibraryStore(dir, nil)
	require.NoError(t, err)
	defer s.Close()

	snap, err := s.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 1)
	assert.Equal(t, 3, snap[0].ChaptersCount)
	assert.Equal(t, 2, snap[0].ChaptersReadCount)
}

func TestLibraryStore_Closed(t *testing.T) {
	s, err := NewLibraryStore("", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	updates := s.ObserveLibrary(ctx)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	for range updates {
	}

	assert.ErrorIs(t, s.Add(ctx, domain.Book{URL: "u"}), domain.ErrStoreClosed)
	_, err = s.Snapshot(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
}

func TestLibraryStore_CanceledContext(t *testing.T) {
	s, err := NewLibraryStore("", nil)
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Add(ctx, domain.Book{URL: "u"}), context.Canceled)
}
