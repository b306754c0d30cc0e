// Package registry holds live interview sessions in memory with a sliding
// TTL. Each entry carries its own mutex so a session processes at most one
// in-flight answer at a time while distinct sessions run in parallel.
package registry

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/okian/viva/internal/domain/interview"
)

// Defaults for session retention.
const (
	DefaultTTL             = time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// Entry is a registered session together with its serialization lock.
// Callers must hold the lock while reading or mutating the session.
type Entry struct {
	mu      sync.Mutex
	Session *interview.Session
}

// Lock acquires the per-session lock.
func (e *Entry) Lock() {
	e.mu.Lock()
}

// Unlock releases the per-session lock.
func (e *Entry) Unlock() {
	e.mu.Unlock()
}

// Registry maps session ids to entries. Expired sessions vanish and any
// later reference surfaces ErrNotFound.
type Registry struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// Option applies a configuration option to the Registry.
type Option func(*registryConfig)

type registryConfig struct {
	ttl     time.Duration
	cleanup time.Duration
}

// WithTTL sets how long an idle session stays registered.
func WithTTL(d time.Duration) Option {
	return func(c *registryConfig) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithCleanupInterval sets how often expired entries are purged.
func WithCleanupInterval(d time.Duration) Option {
	return func(c *registryConfig) {
		if d > 0 {
			c.cleanup = d
		}
	}
}

// New creates a Registry with configuration options.
func New(opts ...Option) *Registry {
	cfg := &registryConfig{
		ttl:     DefaultTTL,
		cleanup: DefaultCleanupInterval,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Registry{
		cache: gocache.New(cfg.ttl, cfg.cleanup),
		ttl:   cfg.ttl,
	}
}

// Put registers a session and returns its entry.
func (r *Registry) Put(s *interview.Session) *Entry {
	e := &Entry{Session: s}
	r.cache.Set(s.ID, e, r.ttl)
	return e
}

// Get looks up a session entry and slides its TTL forward.
func (r *Registry) Get(id string) (*Entry, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	e, ok := v.(*Entry)
	if !ok {
		return nil, ErrNotFound
	}
	r.cache.Set(id, e, r.ttl)
	return e, nil
}

// Delete removes a session entry.
func (r *Registry) Delete(id string) {
	r.cache.Delete(id)
}

// Count reports the number of live sessions, expired entries included
// until the next cleanup pass.
func (r *Registry) Count() int {
	return r.cache.ItemCount()
}
