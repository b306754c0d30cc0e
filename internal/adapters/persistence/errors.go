package persistence

import "errors"

var (
	// ErrNotFound indicates no session is stored under the given id.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidID indicates the id cannot be used as a storage key.
	ErrInvalidID = errors.New("invalid session id")
)
