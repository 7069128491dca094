package entity

import "errors"

var (
	ErrMalformedIdentifier = errors.New("malformed identifier")

	// Returned by storage implementations.
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
)
