package mock

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/core"
)

// MockSummarizer is a test double for ai.Summarizer.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, the summary is the prompt kind followed by the record's canonical JSON.
	SummarizeFunc func(ctx context.Context, kind ai.PromptKind, record core.Record) (string, error)

	callCount atomic.Int64
}

// NewMockSummarizer creates a mock summarizer with default behavior.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

func (m *MockSummarizer) Summarize(ctx context.Context, kind ai.PromptKind, record core.Record) (string, error) {
	m.callCount.Add(1)

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, kind, record)
	}

	text, err := record.Canonical()
	if err != nil {
		return "", err
	}
	return string(kind) + ": " + text, nil
}

// CallCount returns the number of times Summarize was called.
func (m *MockSummarizer) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom function.
func (m *MockSummarizer) Reset() {
	m.callCount.Store(0)
	m.SummarizeFunc = nil
}
