package breaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/ai/mock"
	"github.com/poiesic/rendezvous/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_PassesThrough(t *testing.T) {
	inner := mock.NewMockProvider().(*mock.MockProvider)
	p := Wrap(inner, Settings{})
	ctx := context.Background()

	vec, err := p.Embedder().EmbedText(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, mock.DeterministicVector("hello", mock.DefaultDimension), vec)

	vecs, err := p.Embedder().EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)

	summary, err := p.Summarizer().Summarize(ctx, ai.PromptEvent, core.Record{"a": 1})
	require.NoError(t, err)
	assert.Equal(t, `event: {"a":1}`, summary)

	assert.NoError(t, p.Close())
}

func TestWrap_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := mock.NewMockProvider().(*mock.MockProvider)
	boom := errors.New("connection refused")
	embedder := inner.GetMockEmbedder()
	embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, boom
	}

	p := Wrap(inner, Settings{Failures: 3, Timeout: 50 * time.Millisecond})
	ctx := context.Background()

	for range 3 {
		_, err := p.Embedder().EmbedText(ctx, "x")
		require.ErrorIs(t, err, boom)
	}
	calls := embedder.CallCount()

	_, err := p.Embedder().EmbedText(ctx, "x")
	require.ErrorIs(t, err, ai.ErrModelUnavailable)
	assert.Equal(t, calls, embedder.CallCount(), "open breaker does not call the model")

	// summarizer has its own breaker
	_, err = p.Summarizer().Summarize(ctx, ai.PromptEvent, core.Record{})
	assert.NoError(t, err)

	// after the timeout a probe is let through and closes the breaker again
	embedder.EmbedTextFunc = nil
	assert.Eventually(t, func() bool {
		_, err := p.Embedder().EmbedText(ctx, "x")
		return err == nil
	}, time.Second, 20*time.Millisecond)
}

func TestWrap_CancellationDoesNotTrip(t *testing.T) {
	inner := mock.NewMockProvider().(*mock.MockProvider)
	inner.GetMockSummarizer().SummarizeFunc = func(ctx context.Context, _ ai.PromptKind, _ core.Record) (string, error) {
		return "", context.Canceled
	}

	p := Wrap(inner, Settings{Failures: 1})
	for range 3 {
		_, err := p.Summarizer().Summarize(context.Background(), ai.PromptInterest, core.Record{})
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ai.ErrModelUnavailable)
	}
}
