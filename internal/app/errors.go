package app

import "errors"

// Service errors.
var (
	// ErrInvalidRequest wraps validation failures on inbound requests.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrSessionNotFound means the session is in neither the registry nor
	// the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoProjects means the resume text yielded nothing usable.
	ErrNoProjects = errors.New("no projects extracted")
)
