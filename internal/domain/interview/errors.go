package interview

import "errors"

// ErrMissingCandidateName indicates a session-start request without a
// candidate name.
var ErrMissingCandidateName = errors.New("candidate name is required")
