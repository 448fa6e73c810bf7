package ai

import (
	"context"

	"github.com/poiesic/rendezvous/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Summarizer turns a structured record into a short natural-language
// paragraph using a generative model. The paragraph is what gets embedded.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize renders record with the instructions selected by kind.
	// The output is not validated beyond removing model reasoning traces.
	Summarize(ctx context.Context, kind PromptKind, record core.Record) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Summarizer returns the record summarization service.
	Summarizer() Summarizer

	// Close releases resources held by the provider and its services.
	Close() error
}
