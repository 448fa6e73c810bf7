package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/core"
	"github.com/poiesic/rendezvous/storage"
)

// Retriever answers similarity queries against a collection.
type Retriever struct {
	collection storage.Collection
	embedder   ai.Embedder
	summarizer ai.Summarizer
	monitor    RetrievalMonitor
	logger     *slog.Logger
}

type Option func(*Retriever) error

func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithSummarizer replaces the provider's summarizer used by Recommend.
func WithSummarizer(summarizer ai.Summarizer) Option {
	return func(r *Retriever) error {
		if summarizer != nil {
			r.summarizer = summarizer
		}
		return nil
	}
}

// WithMonitor observes every query the retriever runs.
func WithMonitor(monitor RetrievalMonitor) Option {
	return func(r *Retriever) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		r.monitor = monitor
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(collection storage.Collection, provider ai.AIProvider, opts ...Option) (*Retriever, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		collection: collection,
		embedder:   provider.Embedder(),
		summarizer: provider.Summarizer(),
		monitor:    &noopMonitor{},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "retriever", "collection", collection.Name())

	return r, nil
}

// Retrieve returns the topN entries nearest to query that match filter.
func (r *Retriever) Retrieve(ctx context.Context, query string, filter core.Filter, topN int) (results []core.Neighbor, err error) {
	if err := core.ValidateTopN(topN); err != nil {
		return nil, err
	}

	r.monitor.Start(query)
	defer func() { r.monitor.Finish(results, err) }()

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		r.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}
	r.monitor.AfterEmbedding(len(vector))

	results, err = r.collection.Query(ctx, vector, filter, topN)
	if err != nil {
		r.logger.Error("error querying collection", "err", err)
		return nil, err
	}

	r.logger.Debug("retrieved neighbors", "requested", topN, "found", len(results))
	return results, nil
}

// RetrieveTexts runs one query per text and keys the results by the id at
// the same position. Texts and ids are zipped to the shorter length.
func (r *Retriever) RetrieveTexts(ctx context.Context, texts []string, ids []string, filter core.Filter, topN int) (map[string][]core.Neighbor, error) {
	if err := core.ValidateTopN(topN); err != nil {
		return nil, err
	}

	n := r.zipLength("texts", len(texts), len(ids))
	out := make(map[string][]core.Neighbor, n)
	for i := range n {
		results, err := r.Retrieve(ctx, texts[i], filter, topN)
		if err != nil {
			return nil, err
		}
		out[ids[i]] = results
	}
	return out, nil
}

// RetrieveTokens joins each token list with single spaces and retrieves by the result.
func (r *Retriever) RetrieveTokens(ctx context.Context, tokens [][]string, ids []string, filter core.Filter, topN int) (map[string][]core.Neighbor, error) {
	return r.RetrieveTexts(ctx, core.JoinTokens(tokens), ids, filter, topN)
}

// Recommend summarizes each record with kind and uses the summary as the
// query. Records and ids are zipped to the shorter length; the first
// failure aborts the batch.
func (r *Retriever) Recommend(ctx context.Context, kind ai.PromptKind, records []core.Record, ids []string, filter core.Filter, topN int) (map[string][]core.Neighbor, error) {
	if err := core.ValidateTopN(topN); err != nil {
		return nil, err
	}

	n := r.zipLength("records", len(records), len(ids))
	out := make(map[string][]core.Neighbor, n)
	for i := range n {
		query, err := r.summarizer.Summarize(ctx, kind, records[i])
		if err != nil {
			r.logger.Error("error summarizing record", "id", ids[i], "err", err)
			return nil, err
		}
		results, err := r.Retrieve(ctx, query, filter, topN)
		if err != nil {
			return nil, err
		}
		out[ids[i]] = results
	}
	return out, nil
}

func (r *Retriever) zipLength(what string, items, ids int) int {
	if items != ids {
		r.logger.Warn("batch length mismatch, extra items ignored", "items", what, "count", items, "ids", ids)
	}
	return min(items, ids)
}
