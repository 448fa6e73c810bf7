// Package breaker guards an ai.AIProvider with circuit breakers, so that a
// model host that keeps failing is given time to recover instead of being
// called by every request.
package breaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/core"
	"github.com/sony/gobreaker"
)

// Settings configures the breakers. Embedding and summarization calls each
// get their own breaker.
type Settings struct {
	// Failures is the number of consecutive failures that opens a breaker
	Failures uint32

	// Timeout is how long a breaker stays open before letting a probe through
	Timeout time.Duration

	// MaxRequests is the number of probes allowed while half-open
	MaxRequests uint32
}

// DefaultSettings returns Settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Failures:    5,
		Timeout:     30 * time.Second,
		MaxRequests: 1,
	}
}

type provider struct {
	inner      ai.AIProvider
	embedder   *embedder
	summarizer *summarizer
}

// Wrap returns a provider whose embedder and summarizer fail fast with
// ai.ErrModelUnavailable while their breaker is open.
func Wrap(inner ai.AIProvider, settings Settings) ai.AIProvider {
	defaults := DefaultSettings()
	if settings.Failures == 0 {
		settings.Failures = defaults.Failures
	}
	if settings.Timeout <= 0 {
		settings.Timeout = defaults.Timeout
	}
	if settings.MaxRequests == 0 {
		settings.MaxRequests = defaults.MaxRequests
	}

	return &provider{
		inner:      inner,
		embedder:   &embedder{inner: inner.Embedder(), cb: newBreaker("embedder", settings)},
		summarizer: &summarizer{inner: inner.Summarizer(), cb: newBreaker("summarizer", settings)},
	}
}

func (p *provider) Embedder() ai.Embedder     { return p.embedder }
func (p *provider) Summarizer() ai.Summarizer { return p.summarizer }
func (p *provider) Close() error              { return p.inner.Close() }

func newBreaker(name string, settings Settings) *gobreaker.CircuitBreaker {
	logger := slog.Default().With("component", "breaker")
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.Failures
		},
		// a caller giving up says nothing about the model's health
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

func execute[T any](cb *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	out, err := cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if err != nil {
		var zero T
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("%w: %s: %w", ai.ErrModelUnavailable, cb.Name(), err)
		}
		return zero, err
	}
	return out.(T), nil
}

type embedder struct {
	inner ai.Embedder
	cb    *gobreaker.CircuitBreaker
}

func (e *embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return execute(e.cb, func() ([]float32, error) {
		return e.inner.EmbedText(ctx, text)
	})
}

func (e *embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return execute(e.cb, func() ([][]float32, error) {
		return e.inner.EmbedTexts(ctx, texts)
	})
}

type summarizer struct {
	inner ai.Summarizer
	cb    *gobreaker.CircuitBreaker
}

func (s *summarizer) Summarize(ctx context.Context, kind ai.PromptKind, record core.Record) (string, error) {
	return execute(s.cb, func() (string, error) {
		return s.inner.Summarize(ctx, kind, record)
	})
}
