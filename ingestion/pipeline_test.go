package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/ai/mock"
	"github.com/poiesic/rendezvous/core"
	"github.com/poiesic/rendezvous/storage"
	"github.com/poiesic/rendezvous/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCollection(t *testing.T) storage.Collection {
	t.Helper()
	col, backend, err := badger.NewMemoryCollection("events", core.MetricInnerProduct)
	require.NoError(t, err)
	t.Cleanup(func() {
		col.Close()
		backend.Close()
	})
	return col
}

func setupPipeline(t *testing.T, opts ...Option) (*Pipeline, storage.Collection, *mock.MockProvider) {
	t.Helper()
	col := setupCollection(t)
	provider := mock.NewMockProvider().(*mock.MockProvider)
	p, err := NewPipeline(col, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p, col, provider
}

func TestNewPipeline(t *testing.T) {
	col := setupCollection(t)
	provider := mock.NewMockProvider()

	t.Run("valid pipeline", func(t *testing.T) {
		p, err := NewPipeline(col, provider)
		require.NoError(t, err)
		defer p.Release()

		assert.NotNil(t, p.pool)
		assert.Equal(t, 1, p.pool.Cap())
	})

	t.Run("nil collection", func(t *testing.T) {
		_, err := NewPipeline(nil, provider)
		assert.Equal(t, ErrCollectionRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(col, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestPipeline_WithOptions(t *testing.T) {
	col := setupCollection(t)
	provider := mock.NewMockProvider()

	t.Run("with pool size", func(t *testing.T) {
		p, err := NewPipeline(col, provider, WithPoolSize(4))
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, 4, p.pool.Cap())
	})

	t.Run("with pool size zero defaults to 1", func(t *testing.T) {
		p, err := NewPipeline(col, provider, WithPoolSize(0))
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, 1, p.pool.Cap())
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		p, err := NewPipeline(col, provider, WithLogger(nil))
		require.NoError(t, err)
		defer p.Release()
		assert.NotNil(t, p.logger)
	})

	t.Run("with custom logger", func(t *testing.T) {
		p, err := NewPipeline(col, provider, WithLogger(slog.Default()))
		require.NoError(t, err)
		defer p.Release()
		assert.NotNil(t, p.logger)
	})

	t.Run("with summarizer", func(t *testing.T) {
		s := mock.NewMockSummarizer()
		p, err := NewPipeline(col, provider, WithSummarizer(s))
		require.NoError(t, err)
		defer p.Release()
		assert.Same(t, s, p.summarizer)
	})
}

func TestStoreTexts(t *testing.T) {
	ctx := context.Background()
	var stored atomic.Int64
	p, col, _ := setupPipeline(t, WithStoredHook(func(n int) { stored.Add(int64(n)) }))

	n, err := p.StoreTexts(ctx, []string{"chess in the park", "late night karaoke"}, []string{"a", "b"}, map[string]string{"kind": "event"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, int64(2), stored.Load())

	entry, err := col.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "late night karaoke", entry.Document)
	assert.Equal(t, mock.DeterministicVector("late night karaoke", mock.DefaultDimension), entry.Vector)
	assert.Equal(t, core.Fingerprint("late night karaoke"), entry.Fingerprint)
	assert.Equal(t, "event", entry.Metadata["kind"])
}

func TestStoreTokens(t *testing.T) {
	ctx := context.Background()
	p, col, _ := setupPipeline(t)

	_, err := p.StoreTokens(ctx, [][]string{{"board", "games", "night"}}, []string{"g1"}, nil)
	require.NoError(t, err)

	entry, err := col.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "board games night", entry.Document)
}

func TestStoreZipsToShorter(t *testing.T) {
	ctx := context.Background()
	p, col, _ := setupPipeline(t)

	n, err := p.StoreTexts(ctx, []string{"one", "two", "three"}, []string{"1", "2"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = p.StoreTexts(ctx, []string{"four"}, []string{"4", "5"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	count, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStoreEmptyBatch(t *testing.T) {
	ctx := context.Background()
	p, _, provider := setupPipeline(t)

	n, err := p.StoreTexts(ctx, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = p.StoreRecords(ctx, ai.PromptEvent, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	assert.Equal(t, 0, provider.GetMockEmbedder().CallCount())
	assert.Equal(t, 0, provider.GetMockSummarizer().CallCount())
}

func TestStoreRecords(t *testing.T) {
	ctx := context.Background()
	p, col, provider := setupPipeline(t)

	records := []core.Record{
		{"name": "Sunset kayak tour", "city": "Seattle"},
		{"name": "Pottery workshop", "price": 40},
	}
	n, err := p.StoreRecords(ctx, ai.PromptEvent, records, []string{"k1", "p1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, provider.GetMockSummarizer().CallCount())

	entry, err := col.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, `event: {"city":"Seattle","name":"Sunset kayak tour"}`, entry.Document)

	fp, err := records[0].Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp, entry.Fingerprint)
}

func TestStoreRecordsDuplicateIDsOverwrite(t *testing.T) {
	ctx := context.Background()
	p, col, _ := setupPipeline(t)

	_, err := p.StoreRecords(ctx, ai.PromptEvent, []core.Record{{"v": 1}}, []string{"same"}, nil)
	require.NoError(t, err)
	_, err = p.StoreRecords(ctx, ai.PromptEvent, []core.Record{{"v": 2}}, []string{"same"}, nil)
	require.NoError(t, err)

	count, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entry, err := col.Get(ctx, "same")
	require.NoError(t, err)
	assert.Equal(t, `event: {"v":2}`, entry.Document)
}

func TestStoreRecordsSummarizerFailureAbortsBatch(t *testing.T) {
	ctx := context.Background()

	for _, poolSize := range []int{1, 4} {
		p, col, provider := setupPipeline(t, WithPoolSize(poolSize))
		boom := errors.New("model overloaded")
		provider.GetMockSummarizer().SummarizeFunc = func(ctx context.Context, kind ai.PromptKind, r core.Record) (string, error) {
			if r["bad"] == true {
				return "", boom
			}
			return "fine", nil
		}

		records := []core.Record{{"n": 1}, {"bad": true}, {"n": 3}}
		_, err := p.StoreRecords(ctx, ai.PromptEvent, records, []string{"1", "2", "3"}, nil)
		assert.ErrorIs(t, err, boom)

		count, err := col.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count, "pool size %d", poolSize)
		assert.Equal(t, 0, provider.GetMockEmbedder().CallCount())
	}
}

func TestStoreEmbedderFailure(t *testing.T) {
	ctx := context.Background()
	p, col, provider := setupPipeline(t)
	boom := errors.New("embedder down")
	provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, boom
	}

	_, err := p.StoreTexts(ctx, []string{"x"}, []string{"x"}, nil)
	assert.ErrorIs(t, err, boom)

	count, err := col.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStoreEmbeddingMismatch(t *testing.T) {
	ctx := context.Background()
	p, _, provider := setupPipeline(t)
	provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}

	_, err := p.StoreTexts(ctx, []string{"x", "y"}, []string{"x", "y"}, nil)
	assert.ErrorIs(t, err, ErrEmbeddingMismatch)
}

func TestStoreEmptyIDRejected(t *testing.T) {
	ctx := context.Background()
	p, _, _ := setupPipeline(t)

	_, err := p.StoreTexts(ctx, []string{"x"}, []string{""}, nil)
	assert.ErrorIs(t, err, core.ErrEmptyID)
}

func TestSummarizeAllPreservesOrder(t *testing.T) {
	ctx := context.Background()
	p, _, _ := setupPipeline(t, WithPoolSize(8))

	records := make([]core.Record, 20)
	for i := range records {
		records[i] = core.Record{"i": i}
	}

	summaries, err := p.SummarizeAll(ctx, ai.PromptInterest, records)
	require.NoError(t, err)
	require.Len(t, summaries, 20)
	for i, s := range summaries {
		want, err := records[i].Canonical()
		require.NoError(t, err)
		assert.Equal(t, "interest: "+want, s)
	}
}

func TestSummarizeAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, _, _ := setupPipeline(t)

	_, err := p.SummarizeAll(ctx, ai.PromptEvent, []core.Record{{"a": 1}})
	assert.ErrorIs(t, err, context.Canceled)
}
