// Package mock provides test double implementations of AI service interfaces.
//
// The mocks let tests run without an embedding or chat server and produce
// deterministic output: embeddings are unit vectors derived from a hash of
// the text, and summaries echo the prompt kind and the record.
//
//	provider := mock.NewMockProvider()
//	vector, err := provider.Embedder().EmbedText(ctx, "test")
//
//	summarizer := mock.NewMockSummarizer()
//	summarizer.SummarizeFunc = func(ctx context.Context, kind ai.PromptKind, r core.Record) (string, error) {
//	    return "", errors.New("model unavailable")
//	}
package mock
