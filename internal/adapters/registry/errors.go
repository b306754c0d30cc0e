package registry

import "errors"

// ErrNotFound indicates no live session exists under the given id, either
// because it never existed or because it expired.
var ErrNotFound = errors.New("session not found")
