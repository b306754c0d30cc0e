package oracle

import "errors"

var (
	// ErrNotConfigured indicates no provider has been wired in.
	ErrNotConfigured = errors.New("oracle not configured")

	// ErrUnavailable indicates the provider could not serve the call.
	ErrUnavailable = errors.New("oracle unavailable")

	// ErrEmptyCompletion indicates the provider answered with no usable text.
	ErrEmptyCompletion = errors.New("empty completion")
)
