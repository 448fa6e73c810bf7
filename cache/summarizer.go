package cache

import (
	"context"
	"log/slog"

	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/core"
)

// Summarizer wraps an ai.Summarizer with a SummaryCache. Cache failures are
// logged and treated as misses, so they never fail a summarization.
type Summarizer struct {
	inner  ai.Summarizer
	cache  SummaryCache
	model  string
	logger *slog.Logger
}

var _ ai.Summarizer = (*Summarizer)(nil)

// NewSummarizer caches summaries produced by inner. model is part of the key
// so switching chat models does not serve stale summaries.
func NewSummarizer(inner ai.Summarizer, cache SummaryCache, model string) *Summarizer {
	return &Summarizer{
		inner:  inner,
		cache:  cache,
		model:  model,
		logger: slog.Default().With("component", "summary-cache"),
	}
}

func (s *Summarizer) Summarize(ctx context.Context, kind ai.PromptKind, record core.Record) (string, error) {
	key, err := SummaryKey(s.model, kind, record)
	if err != nil {
		return "", err
	}

	summary, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("summary cache read failed", "key", key, "err", err)
	} else if ok {
		s.logger.Debug("summary cache hit", "key", key)
		return summary, nil
	}

	summary, err = s.inner.Summarize(ctx, kind, record)
	if err != nil {
		return "", err
	}

	if err := s.cache.Set(ctx, key, summary); err != nil {
		s.logger.Warn("summary cache write failed", "key", key, "err", err)
	}
	return summary, nil
}
