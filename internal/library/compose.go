package library

import (
	"sort"

	"github.com/mmcdole/dokusha/internal/domain"
)

// ViewOptions selects which books the library screen shows and in what order
type ViewOptions struct {
	Completed  bool                // Show completed (true) or in-progress (false) books
	FilterRead domain.TernaryState // Active: fully read only. Inverse: not fully read only.
	SortRead   domain.TernaryState // Active: fewest unread first. Inverse: most unread first.
}

// Compose filters and orders books for display.
// The input is never modified; a new slice is returned on every call.
func Compose(books []domain.BookWithProgress, opts ViewOptions) []domain.BookWithProgress {
	out := make([]domain.BookWithProgress, 0, len(books))
	for _, b := range books {
		if b.Book.Completed != opts.Completed {
			continue
		}
		if !matchesReadFilter(b, opts.FilterRead) {
			continue
		}
		out = append(out, b)
	}

	switch opts.SortRead {
	case domain.TernaryActive:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UnreadCount() < out[j].UnreadCount()
		})
	case domain.TernaryInverse:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UnreadCount() > out[j].UnreadCount()
		})
	}

	return out
}

func matchesReadFilter(b domain.BookWithProgress, state domain.TernaryState) bool {
	switch state {
	case domain.TernaryActive:
		return b.FullyRead()
	case domain.TernaryInverse:
		return !b.FullyRead()
	default:
		return true
	}
}
