package reembed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/rendezvous/core"
	"github.com/poiesic/rendezvous/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestCollection(t *testing.T) *badger.Collection {
	t.Helper()
	col, backend, err := badger.NewMemoryCollection("descriptions", core.MetricInnerProduct)
	require.NoError(t, err)

	t.Cleanup(func() {
		col.Close()
		backend.Close()
	})
	return col
}

// seedEntries stores n entries with ids e000, e001, ... and vector {1, 0, 0}.
func seedEntries(t *testing.T, col *badger.Collection, n int) []string {
	t.Helper()
	entries := make([]*core.Entry, n)
	ids := make([]string, n)
	for i := range n {
		ids[i] = fmt.Sprintf("e%03d", i)
		entries[i] = &core.Entry{
			ID:          ids[i],
			Vector:      []float32{1, 0, 0},
			Document:    fmt.Sprintf("document %d", i),
			Metadata:    map[string]string{"kind": "event"},
			Fingerprint: uint64(i + 1),
		}
	}
	_, err := col.Upsert(context.Background(), entries...)
	require.NoError(t, err)
	return ids
}

func TestEntryIterator_Basic(t *testing.T) {
	col := setupTestCollection(t)
	ids := seedEntries(t, col, 3)

	iter := NewEntryIterator(col, 2)
	var seen []string
	batches := 0

	err := iter.ForEach(context.Background(), func(entries []*core.Entry) error {
		batches++
		for _, e := range entries {
			seen = append(seen, e.ID)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, ids, seen, "should visit every entry in id order")
	assert.Equal(t, 2, batches)
}

func TestEntryIterator_BatchSizes(t *testing.T) {
	tests := []struct {
		name      string
		batchSize int
		batches   int
	}{
		{"exact multiple", 5, 2},
		{"remainder", 3, 4},
		{"one batch", 100, 1},
		{"single entries", 1, 10},
		{"default when zero", 0, 1},
	}

	col := setupTestCollection(t)
	seedEntries(t, col, 10)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iter := NewEntryIterator(col, tt.batchSize)
			batches, total := 0, 0
			err := iter.ForEach(context.Background(), func(entries []*core.Entry) error {
				batches++
				total += len(entries)
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, 10, total)
			// an exact multiple costs one extra empty List call but no extra batch
			assert.Equal(t, tt.batches, batches)
		})
	}
}

func TestEntryIterator_Empty(t *testing.T) {
	col := setupTestCollection(t)

	called := false
	err := NewEntryIterator(col, 10).ForEach(context.Background(), func([]*core.Entry) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.False(t, called, "fn should not be called for an empty collection")
}

func TestEntryIterator_StopsOnError(t *testing.T) {
	col := setupTestCollection(t)
	seedEntries(t, col, 10)

	expectedErr := errors.New("stop")
	batches := 0
	err := NewEntryIterator(col, 2).ForEach(context.Background(), func([]*core.Entry) error {
		batches++
		return expectedErr
	})
	require.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 1, batches)
}

func TestEntryIterator_ContextCancellation(t *testing.T) {
	col := setupTestCollection(t)
	seedEntries(t, col, 10)

	ctx, cancel := context.WithCancel(context.Background())
	batches := 0
	err := NewEntryIterator(col, 2).ForEach(ctx, func([]*core.Entry) error {
		batches++
		if batches == 2 {
			cancel()
		}
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, batches)
}
