package storage

import (
	"context"

	"github.com/poiesic/rendezvous/core"
)

// Collection is a named, persistent set of embedded entries that can be
// queried by vector similarity. Its distance metric is fixed at creation.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// Metric returns the distance metric the collection was created with.
	Metric() core.Metric

	// Upsert writes entries, replacing any entry with the same ID.
	// InsertedAt is preserved for replaced entries and UpdatedAt is refreshed.
	// Returns the entries with timestamps populated.
	Upsert(ctx context.Context, entries ...*core.Entry) ([]*core.Entry, error)

	// Get retrieves a single entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	Get(ctx context.Context, id string) (*core.Entry, error)

	// GetMany retrieves the entries that exist among ids (no error for missing ones).
	GetMany(ctx context.Context, ids ...string) ([]*core.Entry, error)

	// Delete removes entries by ID.
	// Returns ErrNotFound if any entry doesn't exist.
	Delete(ctx context.Context, ids ...string) error

	// Count returns the number of entries in the collection.
	Count(ctx context.Context) (int, error)

	// List returns up to limit entries with IDs strictly after afterID, in ID order.
	// An empty afterID starts from the beginning.
	List(ctx context.Context, afterID string, limit int) ([]*core.Entry, error)

	// Query returns the n entries nearest to vector that match filter,
	// ordered by ascending distance.
	Query(ctx context.Context, vector []float32, filter core.Filter, n int) ([]core.Neighbor, error)

	// Close releases the collection. The underlying backend stays open.
	Close() error
}
