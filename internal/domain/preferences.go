package domain

import "strings"

// TernaryState is a three-way toggle for a derived filter or sort
type TernaryState int

const (
	TernaryInactive TernaryState = iota // Not applied
	TernaryActive                       // Applied
	TernaryInverse                      // Applied inverted
)

// String returns the persisted form of the state
func (t TernaryState) String() string {
	switch t {
	case TernaryActive:
		return "active"
	case TernaryInverse:
		return "inverse"
	default:
		return "inactive"
	}
}

// Next returns the state a user toggle moves to: active, inverse, inactive, active...
func (t TernaryState) Next() TernaryState {
	switch t {
	case TernaryActive:
		return TernaryInverse
	case TernaryInverse:
		return TernaryInactive
	default:
		return TernaryActive
	}
}

// ParseTernaryState converts persisted text to a TernaryState.
// Unknown values are treated as inactive.
func ParseTernaryState(s string) TernaryState {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return TernaryActive
	case "inverse":
		return TernaryInverse
	default:
		return TernaryInactive
	}
}

// PreferenceKey names an observable ternary setting
type PreferenceKey string

const (
	PrefLibraryFilterRead PreferenceKey = "library_filter_read"
	PrefLibrarySortRead   PreferenceKey = "library_sort_read"
)

// PreferenceKeys returns every known ternary setting
func PreferenceKeys() []PreferenceKey {
	return []PreferenceKey{PrefLibraryFilterRead, PrefLibrarySortRead}
}

// Valid reports whether the key names a known setting
func (k PreferenceKey) Valid() bool {
	for _, known := range PreferenceKeys() {
		if k == known {
			return true
		}
	}
	return false
}
