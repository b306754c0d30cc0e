// Package oracle defines the text-generation contract used by question
// selection and scoring, plus a timeout wrapper shared by all providers.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/viva/pkg/logger"
	"github.com/okian/viva/pkg/metrics"
)

// DefaultTimeout bounds a single generation call.
const DefaultTimeout = 6 * time.Second

// Oracle produces free-form text for a prompt.
type Oracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Timed wraps an Oracle with a per-call timeout and normalized errors. Any
// provider failure surfaces as ErrUnavailable so callers can branch on it.
type Timed struct {
	inner   Oracle
	timeout time.Duration
	log     logger.Logger
}

// Option applies a configuration option to the Timed wrapper.
type Option func(*Timed)

// WithTimeout sets the per-call timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(t *Timed) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Timed) {
		if l != nil {
			t.log = l
		}
	}
}

// Wrap decorates an Oracle with timeout handling and configuration options.
func Wrap(inner Oracle, opts ...Option) *Timed {
	t := &Timed{
		inner:   inner,
		timeout: DefaultTimeout,
		log:     logger.Get(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Generate runs the wrapped provider under the configured timeout.
func (t *Timed) Generate(ctx context.Context, prompt string) (string, error) {
	if t.inner == nil {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	out, err := t.inner.Generate(ctx, prompt)
	elapsed := time.Since(start)
	metrics.RecordOracleLatency(float64(elapsed.Milliseconds()))

	if err != nil {
		metrics.RecordOracleError()
		t.log.Warn(ctx, "oracle generation failed",
			logger.String("model", t.inner.Model()),
			logger.String("elapsed", elapsed.String()),
			logger.Error(err))
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		metrics.RecordOracleError()
		return "", fmt.Errorf("%w: %w", ErrUnavailable, ErrEmptyCompletion)
	}

	t.log.Debug(ctx, "oracle generation completed",
		logger.String("model", t.inner.Model()),
		logger.String("elapsed", elapsed.String()),
		logger.Int("length", len(out)))
	return out, nil
}

// Model reports the wrapped provider's model name.
func (t *Timed) Model() string {
	if t.inner == nil {
		return ""
	}
	return t.inner.Model()
}

// Health verifies the provider answers a trivial prompt within the timeout.
func (t *Timed) Health(ctx context.Context) error {
	if t.inner == nil {
		return ErrNotConfigured
	}
	if _, err := t.Generate(ctx, "Reply with the single word OK."); err != nil {
		return err
	}
	return nil
}

// IsUnavailable reports whether err stems from provider unavailability,
// including context deadline expiry.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrNotConfigured)
}
