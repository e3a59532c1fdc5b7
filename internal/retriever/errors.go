package retriever

import "errors"

var (
	// ErrUnreachable means the start page could not be fetched at all.
	ErrUnreachable = errors.New("network unreachable")
	// ErrNoBook means the start page was fetched but yielded nothing to read.
	ErrNoBook = errors.New("no book found at address")
	// ErrNoTitle means a book was found but its title could not be derived.
	ErrNoTitle = errors.New("book has no title")

	ErrBadAddress = errors.New("malformed address")
	ErrNotFetched = errors.New("page has no body")
)
