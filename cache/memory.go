package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMemorySize is the number of summaries kept by NewMemory when no
// size is given.
const DefaultMemorySize = 1024

// Memory is an in-process SummaryCache holding the most recently used
// summaries. It is used when no Redis server is configured.
type Memory struct {
	lru *expirable.LRU[string, string]
}

var _ SummaryCache = (*Memory)(nil)

// NewMemory creates an LRU cache of size entries that expire after ttl.
// Non-positive values select DefaultMemorySize and DefaultTTL.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = DefaultMemorySize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{lru: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	summary, ok := m.lru.Get(key)
	return summary, ok, nil
}

func (m *Memory) Set(_ context.Context, key, summary string) error {
	m.lru.Add(key, summary)
	return nil
}

// Len returns the number of cached summaries.
func (m *Memory) Len() int {
	return m.lru.Len()
}

func (m *Memory) Close() error {
	m.lru.Purge()
	return nil
}
