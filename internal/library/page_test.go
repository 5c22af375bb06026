package library

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mmcdole/dokusha/internal/config"
	"github.com/mmcdole/dokusha/internal/domain"
	"github.com/mmcdole/dokusha/internal/prefs"
	"github.com/mmcdole/dokusha/internal/stream"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBookStore struct {
	mu        sync.Mutex
	books     []domain.BookWithProgress
	updateErr error
	updated   chan domain.Book
	hub       *stream.Broadcaster[[]domain.BookWithProgress]
}

func newFakeBookStore(books ...domain.BookWithProgress) *fakeBookStore {
	s := &fakeBookStore{
		books:   books,
		updated: make(chan domain.Book, 8),
		hub:     stream.NewBroadcaster[[]domain.BookWithProgress](),
	}
	s.hub.Publish(append([]domain.BookWithProgress(nil), books...))
	return s
}

func (s *fakeBookStore) ObserveLibrary(ctx context.Context) <-chan []domain.BookWithProgress {
	return s.hub.Subscribe(ctx)
}

func (s *fakeBookStore) Update(_ context.Context, book domain.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	for i := range s.books {
		if s.books[i].Book.URL == book.URL {
			s.books[i].Book = book
			s.updated <- book
			s.hub.Publish(append([]domain.BookWithProgress(nil), s.books...))
			return nil
		}
	}
	return domain.ErrBookNotFound
}

type fakePrefs struct {
	mu     sync.Mutex
	values map[domain.PreferenceKey]*stream.Broadcaster[domain.TernaryState]
	setErr error
}

func newFakePrefs() *fakePrefs {
	p := &fakePrefs{values: map[domain.PreferenceKey]*stream.Broadcaster[domain.TernaryState]{}}
	for _, key := range domain.PreferenceKeys() {
		b := stream.NewBroadcaster[domain.TernaryState]()
		b.Publish(domain.TernaryInactive)
		p.values[key] = b
	}
	return p
}

func (p *fakePrefs) Observe(ctx context.Context, key domain.PreferenceKey) <-chan domain.TernaryState {
	return p.values[key].Subscribe(ctx)
}

func (p *fakePrefs) Get(key domain.PreferenceKey) domain.TernaryState {
	v, _ := p.values[key].Current()
	return v
}

func (p *fakePrefs) Set(_ context.Context, key domain.PreferenceKey, state domain.TernaryState) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.setErr != nil {
		return p.setErr
	}
	p.values[key].Publish(state)
	return nil
}

func (p *fakePrefs) Cycle(_ context.Context, key domain.PreferenceKey) (domain.TernaryState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	current, _ := p.values[key].Current()
	if p.setErr != nil {
		return current, p.setErr
	}
	p.values[key].Publish(current.Next())
	return current.Next(), nil
}

func (p *fakePrefs) close() {
	for _, b := range p.values {
		b.Close()
	}
}

func nextView(t *testing.T, ch <-chan []domain.BookWithProgress) []domain.BookWithProgress {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "view channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for view")
	}
	return nil
}

// waitForView reads views until one matches want
func waitForView(t *testing.T, ch <-chan []domain.BookWithProgress, want []string) {
	t.Helper()
	deadline := time.After(time.Second)
	var last []string
	for {
		select {
		case v, ok := <-ch:
			require.True(t, ok, "view channel closed")
			last = urls(v)
			if assert.ObjectsAreEqual(want, last) {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for view %v, last %v", want, last)
		}
	}
}

func TestPage_BooksComposesInitialView(t *testing.T) {
	books := newFakeBookStore(scenarioBooks()...)
	defer books.hub.Close()
	prefs := newFakePrefs()
	defer prefs.close()
	require.NoError(t, prefs.Set(context.Background(), domain.PrefLibrarySortRead, domain.TernaryInverse))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	page := NewPage(books, prefs, false, nil)
	assert.Equal(t, []string{"b", "a"}, urls(nextView(t, page.Books(ctx))))
}

func TestPage_RecomputesOnPreferenceChange(t *testing.T) {
	books := newFakeBookStore(scenarioBooks()...)
	defer books.hub.Close()
	prefs := newFakePrefs()
	defer prefs.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	page := NewPage(books, prefs, false, nil)
	views := page.Books(ctx)
	waitForView(t, views, []string{"a", "b"})

	state, err := page.CycleFilterRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.TernaryActive, state)
	waitForView(t, views, []string{"a"})

	state, err = page.CycleFilterRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.TernaryInverse, state)
	waitForView(t, views, []string{"b"})

	state, err = page.CycleFilterRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.TernaryInactive, state)

	_, err = page.CycleSortRead(ctx)
	require.NoError(t, err)
	_, err = page.CycleSortRead(ctx)
	require.NoError(t, err)
	waitForView(t, views, []string{"b", "a"})
}

func TestPage_SetCompletedMovesBookBetweenTabs(t *testing.T) {
	books := newFakeBookStore(scenarioBooks()...)
	defer books.hub.Close()
	prefs := newFakePrefs()
	defer prefs.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reading := NewPage(books, prefs, false, nil)
	completed := NewPage(books, prefs, true, nil)
	assert.False(t, reading.ShowCompleted())
	assert.True(t, completed.ShowCompleted())

	readingViews := reading.Books(ctx)
	completedViews := completed.Books(ctx)
	waitForView(t, readingViews, []string{"a", "b"})
	waitForView(t, completedViews, []string{})

	book := scenarioBooks()[0].Book
	require.NoError(t, <-reading.SetCompleted(ctx, book, true))

	waitForView(t, readingViews, []string{"b"})
	waitForView(t, completedViews, []string{"a"})
}

func TestPage_SetCompletedReportsFailure(t *testing.T) {
	books := newFakeBookStore(scenarioBooks()...)
	defer books.hub.Close()
	prefs := newFakePrefs()
	defer prefs.close()

	page := NewPage(books, prefs, false, nil)

	result := page.SetCompleted(context.Background(), domain.Book{URL: "missing"}, true)
	assert.ErrorIs(t, <-result, domain.ErrBookNotFound)

	// Handle yields once, then closes
	_, ok := <-result
	assert.False(t, ok)

	books.updateErr = errors.New("disk full")
	err := <-page.SetCompleted(context.Background(), scenarioBooks()[1].Book, true)
	assert.EqualError(t, err, "disk full")
}

func TestPage_SetCompletedDoesNotBlockCaller(t *testing.T) {
	books := newFakeBookStore(scenarioBooks()...)
	defer books.hub.Close()
	prefs := newFakePrefs()
	defer prefs.close()

	page := NewPage(books, prefs, false, nil)

	// Fire and forget: result ignored
	page.SetCompleted(context.Background(), scenarioBooks()[0].Book, true)

	select {
	case b := <-books.updated:
		assert.True(t, b.Completed)
		assert.Equal(t, "a", b.URL)
	case <-time.After(time.Second):
		t.Fatal("update never reached the store")
	}
}

func TestPage_CycleReportsSaveFailure(t *testing.T) {
	books := newFakeBookStore()
	defer books.hub.Close()
	prefs := newFakePrefs()
	defer prefs.close()
	prefs.setErr = errors.New("read-only config")

	page := NewPage(books, prefs, false, nil)

	state, err := page.CycleSortRead(context.Background())
	assert.Error(t, err)
	assert.Equal(t, domain.TernaryInactive, state)
}

func TestPage_BooksClosesWithContext(t *testing.T) {
	books := newFakeBookStore(scenarioBooks()...)
	defer books.hub.Close()
	prefs := newFakePrefs()
	defer prefs.close()

	ctx, cancel := context.WithCancel(context.Background())
	views := NewPage(books, prefs, false, nil).Books(ctx)
	nextView(t, views)
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-views:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("view channel never closed")
		}
	}
}

func TestPage_ReadPreferences(t *testing.T) {
	books := newFakeBookStore()
	defer books.hub.Close()
	prefs := newFakePrefs()
	defer prefs.close()

	page := NewPage(books, prefs, true, nil)
	_, err := page.CycleFilterRead(context.Background())
	require.NoError(t, err)

	filterRead, sortRead := page.ReadPreferences()
	assert.Equal(t, domain.TernaryActive, filterRead)
	assert.Equal(t, domain.TernaryInactive, sortRead)
}

func TestPage_ConcurrentCyclesAreNotLost(t *testing.T) {
	books := newFakeBookStore()
	defer books.hub.Close()
	settings := prefs.NewStore(t.TempDir(), config.DefaultConfig(), nil)
	defer settings.Close()

	page := NewPage(books, settings, false, nil)

	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := page.CycleFilterRead(context.Background())
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	filterRead, _ := page.ReadPreferences()
	assert.Equal(t, domain.TernaryInverse, filterRead)
}
