package config

import "errors"

var (
	// ErrEmptyAddr indicates a missing HTTP listen address.
	ErrEmptyAddr = errors.New("addr must not be empty")

	// ErrUnknownProvider indicates an unsupported oracle provider.
	ErrUnknownProvider = errors.New("oracle_provider must be gemini, openai or none")

	// ErrUnknownBackend indicates an unsupported storage backend.
	ErrUnknownBackend = errors.New("storage_backend must be file or sqlite")

	// ErrBadThreshold indicates a distinctness threshold outside (0, 1].
	ErrBadThreshold = errors.New("distinct_threshold must be in (0, 1]")
)
