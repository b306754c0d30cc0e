package selector

import (
	"errors"
	"fmt"

	"github.com/okian/viva/internal/domain/types"
)

var (
	// ErrNoGenerator indicates the selector has no oracle wired in.
	ErrNoGenerator = errors.New("no generator configured")

	// ErrNoDistinctQuestion indicates every candidate, including the
	// deterministic template, was too similar to recent questions.
	ErrNoDistinctQuestion = errors.New("no distinct question produced")
)

// GenerationError reports that no question could be produced for a
// skill/level pair. It is retryable: the caller's session state is left
// untouched, so the same request can be replayed.
type GenerationError struct {
	Skill string
	Level types.Level
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("skill question generation failed for %s/%s: %v", e.Skill, e.Level, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
