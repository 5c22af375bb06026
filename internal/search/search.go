// Package search matches library books against free-text title queries.
package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	rank "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/dokusha/internal/domain"
)

// Index implements sahilm/fuzzy.Source over book titles
type Index struct {
	books       []domain.BookWithProgress
	lowerTitles []string // Pre-computed lowercase titles
}

// NewIndex builds a title index over books
func NewIndex(books []domain.BookWithProgress) *Index {
	titles := make([]string, len(books))
	for i, b := range books {
		titles[i] = lower(b.Book.Title)
	}
	return &Index{books: books, lowerTitles: titles}
}

// lower folds case rune by rune so the result has the same rune count as s.
// strings.ToLower can expand some runes (İ becomes i plus a combining dot).
func lower(s string) string {
	return strings.Map(unicode.ToLower, s)
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *Index) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of books (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.books) }

// Match is a filtered book with the title positions that matched.
// MatchedIndexes are byte offsets into Book.Book.Title.
type Match struct {
	Book           domain.BookWithProgress
	MatchedIndexes []int
}

// Filter returns the books whose titles fuzzy-match query, best match first.
// An empty query returns every book in its original order.
func (idx *Index) Filter(query string) []Match {
	query = lower(strings.TrimSpace(query))

	if query == "" {
		out := make([]Match, len(idx.books))
		for i, b := range idx.books {
			out[i] = Match{Book: b}
		}
		return out
	}

	matches := fuzzy.FindFrom(query, idx)
	out := make([]Match, len(matches))
	for i, m := range matches {
		b := idx.books[m.Index]
		out[i] = Match{Book: b, MatchedIndexes: titleOffsets(b.Book.Title, idx.lowerTitles[m.Index], m.MatchedIndexes)}
	}
	return out
}

// titleOffsets maps byte offsets in the folded title back onto the original.
// Folding can change a rune's encoded width, so the two differ once the
// title leaves ASCII.
func titleOffsets(title, folded string, matched []int) []int {
	if len(matched) == 0 {
		return matched
	}
	byFolded := make(map[int]int, len(folded))
	orig := 0
	for i := range folded {
		byFolded[i] = orig
		_, size := utf8.DecodeRuneInString(title[orig:])
		orig += size
	}

	out := make([]int, 0, len(matched))
	for _, i := range matched {
		if o, ok := byFolded[i]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Filter is a convenience wrapper returning only the matched books
func Filter(query string, books []domain.BookWithProgress) []domain.BookWithProgress {
	matches := NewIndex(books).Filter(query)
	out := make([]domain.BookWithProgress, len(matches))
	for i, m := range matches {
		out[i] = m.Book
	}
	return out
}

// Rank returns books whose titles contain the query's characters in order
// (case-insensitive), ordered by Levenshtein distance. Ties keep input order.
func Rank(query string, books []domain.BookWithProgress) []domain.BookWithProgress {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	titles := make([]string, len(books))
	for i, b := range books {
		titles[i] = b.Book.Title
	}

	ranks := rank.RankFindFold(query, titles)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]domain.BookWithProgress, len(ranks))
	for i, r := range ranks {
		out[i] = books[r.OriginalIndex]
	}
	return out
}
