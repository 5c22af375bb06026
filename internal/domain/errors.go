package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrBookNotFound indicates the requested book does not exist
	ErrBookNotFound = errors.New("book not found")

	// ErrChapterNotFound indicates the requested chapter does not exist
	ErrChapterNotFound = errors.New("chapter not found")

	// ErrUnknownPreference indicates a preference key nobody registered
	ErrUnknownPreference = errors.New("unknown preference")

	// ErrStoreClosed indicates the store was used after Close
	ErrStoreClosed = errors.New("store is closed")
)
