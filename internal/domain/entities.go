package domain

import "strconv"

// Book is a novel tracked by the local library
type Book struct {
	URL             string `json:"url"`               // Unique identifier (source page URL)
	Title           string `json:"title"`             // Display title
	CoverImageURL   string `json:"cover_image_url"`   // Cover image reference
	Completed       bool   `json:"completed"`         // User marked the book as completed
	InLibrary       bool   `json:"in_library"`        // Shown on the library screen
	LastReadChapter string `json:"last_read_chapter"` // URL of the last opened chapter
}

// WithCompleted returns a copy of the book with the completion flag replaced
func (b Book) WithCompleted(completed bool) Book {
	b.Completed = completed
	return b
}

// Chapter is a single chapter of a book
type Chapter struct {
	URL      string `json:"url"`      // Unique identifier
	BookURL  string `json:"book_url"` // Parent book
	Title    string `json:"title"`    // Display title
	Position int    `json:"position"` // Ordering inside the book
	Read     bool   `json:"read"`     // Chapter has been read
}

// BookWithProgress is a book plus its chapter counts
type BookWithProgress struct {
	Book              Book
	ChaptersCount     int // Total known chapters
	ChaptersReadCount int // Chapters marked as read
}

// UnreadCount returns the number of unread chapters.
// Malformed data (more read than known) yields a negative value.
func (b BookWithProgress) UnreadCount() int {
	return b.ChaptersCount - b.ChaptersReadCount
}

// FullyRead reports whether every known chapter has been read
func (b BookWithProgress) FullyRead() bool {
	return b.ChaptersCount == b.ChaptersReadCount
}

// UnreadBadge returns the unread counter shown on a book card, or "" when
// there is nothing unread.
func (b BookWithProgress) UnreadBadge() string {
	n := b.UnreadCount()
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// SameItem reports whether two entries refer to the same book
func SameItem(a, b BookWithProgress) bool {
	return a.Book.URL == b.Book.URL
}

// SameContents reports whether two entries would render identically
func SameContents(a, b BookWithProgress) bool {
	return a == b
}
