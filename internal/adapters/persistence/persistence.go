// Package persistence stores interview sessions so progress survives a
// crash. Sessions are written synchronously after every committed
// mutation.
package persistence

import (
	"context"

	"github.com/okian/viva/internal/domain/interview"
)

// Store persists sessions keyed by id.
type Store interface {
	Save(ctx context.Context, s *interview.Session) error
	Load(ctx context.Context, id string) (*interview.Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
