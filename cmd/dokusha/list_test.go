package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mmcdole/dokusha/internal/config"
	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/library"
	"github.com/mmcdole/dokusha/internal/log"
	"github.com/mmcdole/dokusha/internal/prefs"
	"github.com/mmcdole/dokusha/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const libraryJSON = `[
  {"url": "u1", "title": "Night Walker", "in_library": true,
   "chapters": [{"url": "u1/1"}, {"url": "u1/2"}, {"url": "u1/3", "read": true}]},
  {"url": "u2", "title": "Nightfall", "in_library": true,
   "chapters": [{"url": "u2/1", "read": true}]},
  {"url": "u3", "title": "Day Break", "in_library": true, "completed": true}
]`

func newPages(t *testing.T) (reading, completed *library.Page) {
	t.Helper()
	books, err := store.NewLibraryStore("", log.NullLogger())
	require.NoError(t, err)
	t.Cleanup(func() { books.Close() })

	_, err = books.Import(context.Background(), strings.NewReader(libraryJSON))
	require.NoError(t, err)

	settings := prefs.NewStore(t.TempDir(), config.DefaultConfig(), log.NullLogger())
	t.Cleanup(settings.Close)

	return library.NewPage(books, settings, false, nil), library.NewPage(books, settings, true, nil)
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

func TestPrintLibrary_Reading(t *testing.T) {
	reading, _ := newPages(t)

	var buf bytes.Buffer
	require.NoError(t, printLibrary(context.Background(), &buf, reading, ""))

	out := lines(buf.String())
	require.Len(t, out, 3)
	assert.Contains(t, out[0], "UNREAD")
	assert.Contains(t, out[1], "Night Walker")
	assert.True(t, strings.HasPrefix(out[1], "2 "))
	assert.Contains(t, out[2], "Nightfall")
	assert.True(t, strings.HasPrefix(out[2], "- "))
}

func TestPrintLibrary_Completed(t *testing.T) {
	_, completed := newPages(t)

	var buf bytes.Buffer
	require.NoError(t, printLibrary(context.Background(), &buf, completed, ""))

	out := lines(buf.String())
	require.Len(t, out, 2)
	assert.Contains(t, out[1], "Day Break")
}

func TestPrintLibrary_Search(t *testing.T) {
	reading, _ := newPages(t)

	var buf bytes.Buffer
	require.NoError(t, printLibrary(context.Background(), &buf, reading, "nightf"))

	out := lines(buf.String())
	require.Len(t, out, 2)
	assert.Contains(t, out[1], "Nightfall")
}

func TestWriteBooks_NegativeUnreadShowsDash(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBooks(&buf, []domain.BookWithProgress{{
		Book:              domain.Book{URL: "x", Title: "Broken"},
		ChaptersCount:     1,
		ChaptersReadCount: 4,
	}}))
	assert.NotContains(t, buf.String(), "-3")
	assert.Contains(t, buf.String(), "Broken")
}
