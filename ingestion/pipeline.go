package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/core"
	"github.com/poiesic/rendezvous/storage"
)

// Pipeline summarizes, embeds and stores batches of items into a collection.
type Pipeline struct {
	collection storage.Collection
	embedder   ai.Embedder
	summarizer ai.Summarizer
	pool       *ants.Pool
	onStored   func(count int)
	logger     *slog.Logger
}

type Option func(*Pipeline) error

// WithPoolSize sets how many records are summarized concurrently.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithSummarizer replaces the provider's summarizer, for example with a
// caching wrapper.
func WithSummarizer(summarizer ai.Summarizer) Option {
	return func(p *Pipeline) error {
		if summarizer != nil {
			p.summarizer = summarizer
		}
		return nil
	}
}

// WithStoredHook registers a callback invoked with the number of entries
// written after each successful batch.
func WithStoredHook(fn func(count int)) Option {
	return func(p *Pipeline) error {
		p.onStored = fn
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(collection storage.Collection, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		collection: collection,
		embedder:   provider.Embedder(),
		summarizer: provider.Summarizer(),
		pool:       pool,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion", "collection", collection.Name())

	return p, nil
}

// StoreTexts embeds each text and stores it under the id at the same
// position. Returns the number of entries written.
func (p *Pipeline) StoreTexts(ctx context.Context, texts []string, ids []string, metadata map[string]string) (int, error) {
	n := p.zipLength("texts", len(texts), len(ids))
	if n == 0 {
		return 0, nil
	}

	entries := make([]*core.Entry, n)
	for i := range n {
		entries[i] = &core.Entry{
			ID:          ids[i],
			Document:    texts[i],
			Metadata:    metadata,
			Fingerprint: core.Fingerprint(texts[i]),
		}
	}
	return p.embedAndStore(ctx, entries)
}

// StoreTokens joins each token list with single spaces and stores the result.
func (p *Pipeline) StoreTokens(ctx context.Context, tokens [][]string, ids []string, metadata map[string]string) (int, error) {
	return p.StoreTexts(ctx, core.JoinTokens(tokens), ids, metadata)
}

// StoreRecords summarizes each record with kind, then embeds and stores the
// summary under the id at the same position. The stored fingerprint is that
// of the record, so unchanged records can be detected later.
func (p *Pipeline) StoreRecords(ctx context.Context, kind ai.PromptKind, records []core.Record, ids []string, metadata map[string]string) (int, error) {
	n := p.zipLength("records", len(records), len(ids))
	if n == 0 {
		return 0, nil
	}

	summaries, err := p.SummarizeAll(ctx, kind, records[:n])
	if err != nil {
		return 0, err
	}

	entries := make([]*core.Entry, n)
	for i := range n {
		fingerprint, err := records[i].Fingerprint()
		if err != nil {
			return 0, fmt.Errorf("failed to fingerprint record %q: %w", ids[i], err)
		}
		entries[i] = &core.Entry{
			ID:          ids[i],
			Document:    summaries[i],
			Metadata:    metadata,
			Fingerprint: fingerprint,
		}
	}
	return p.embedAndStore(ctx, entries)
}

// SummarizeAll summarizes records on the worker pool, preserving order.
// The first failure cancels the remaining work and is returned.
func (p *Pipeline) SummarizeAll(ctx context.Context, kind ai.PromptKind, records []core.Record) ([]string, error) {
	if len(records) == 0 {
		return []string{}, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	summaries := make([]string, len(records))
	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i, record := range records {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			summary, err := p.summarizer.Summarize(ctx, kind, record)
			if err != nil {
				fail(fmt.Errorf("failed to summarize record %d: %w", i, err))
				return
			}
			summaries[i] = summary
		})
		if err != nil {
			wg.Done()
			fail(err)
		}
	}
	wg.Wait()

	if firstErr != nil {
		p.logger.Error("summarization aborted", "kind", kind, "err", firstErr)
		return nil, firstErr
	}
	// the parent context may have been cancelled without any summarizer failing
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (p *Pipeline) embedAndStore(ctx context.Context, entries []*core.Entry) (int, error) {
	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Document
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		p.logger.Error("error generating embeddings", "count", len(texts), "err", err)
		return 0, err
	}
	if len(vectors) != len(entries) {
		return 0, fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingMismatch, len(entries), len(vectors))
	}
	for i := range entries {
		entries[i].Vector = vectors[i]
	}

	if _, err := p.collection.Upsert(ctx, entries...); err != nil {
		p.logger.Error("error storing entries", "count", len(entries), "err", err)
		return 0, err
	}

	p.logger.Info("stored entries", "count", len(entries))
	if p.onStored != nil {
		p.onStored(len(entries))
	}
	return len(entries), nil
}

func (p *Pipeline) zipLength(what string, items, ids int) int {
	if items != ids {
		p.logger.Warn("batch length mismatch, extra items ignored", "items", what, "count", items, "ids", ids)
	}
	return min(items, ids)
}

// Release stops the worker pool.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
