package badger

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/rendezvous/core"
	"github.com/poiesic/rendezvous/storage"
)

// Collection is a badger-backed storage.Collection. Entries live under
// col:<name>:e:<id> and the collection description under col:<name>:meta.
type Collection struct {
	backend *Backend
	info    core.CollectionInfo
	prefix  []byte
	closed  atomic.Bool
	logger  *slog.Logger
}

var _ storage.Collection = (*Collection)(nil)

// NewCollection opens the named collection, creating it with metric if it
// does not exist yet. An empty metric accepts whatever metric the collection
// was created with (or DefaultMetric for a new one). Reopening with a
// different non-empty metric returns storage.ErrMetricMismatch.
func NewCollection(backend *Backend, name string, metric core.Metric) (*Collection, error) {
	if !validCollectionName(name) {
		return nil, fmt.Errorf("%w: %q", storage.ErrInvalidCollectionName, name)
	}
	if backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if metric != "" {
		if _, err := core.ParseMetric(string(metric)); err != nil {
			return nil, err
		}
	}

	var info *core.CollectionInfo
	err := backend.WithTx(func(tx *badger.Txn) error {
		key := makeMetaKey(name)
		existing, err := readCollectionInfo(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			if metric != "" && existing.Metric != metric {
				return fmt.Errorf("%w: %q was created with %s, requested %s",
					storage.ErrMetricMismatch, name, existing.Metric, metric)
			}
			info = existing
			return nil
		}

		if metric == "" {
			metric = core.DefaultMetric
		}
		info = &core.CollectionInfo{
			Name:      name,
			Metric:    metric,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Set(key, storage.MarshalCollectionInfo(info)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	logger := backend.logger.With("collection", name)
	logger.Debug("opened collection", "metric", info.Metric, "created_at", info.CreatedAt)

	return &Collection{
		backend: backend,
		info:    *info,
		prefix:  makeEntryPrefix(name),
		logger:  logger,
	}, nil
}

func (c *Collection) Name() string {
	return c.info.Name
}

func (c *Collection) Metric() core.Metric {
	return c.info.Metric
}

// Info returns the stored collection description.
func (c *Collection) Info() core.CollectionInfo {
	return c.info
}

func (c *Collection) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *Collection) checkOpen() error {
	if c.closed.Load() || c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

func (c *Collection) Upsert(ctx context.Context, entries ...*core.Entry) ([]*core.Entry, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if err := core.ValidateEntry(entry); err != nil {
			return nil, err
		}
	}

	err := c.backend.WithTx(func(tx *badger.Txn) error {
		// stored timestamps have microsecond precision
		now := time.Now().UTC().Truncate(time.Microsecond)
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := makeEntryKey(c.info.Name, entry.ID)

			old, err := readEntry(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				entry.InsertedAt = old.InsertedAt
			} else {
				entry.InsertedAt = now
			}
			entry.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("upserted entries", "count", len(entries))
	return entries, nil
}

func (c *Collection) Get(ctx context.Context, id string) (*core.Entry, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	var result *core.Entry
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readEntry(tx, makeEntryKey(c.info.Name, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

func (c *Collection) GetMany(ctx context.Context, ids ...string) ([]*core.Entry, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	var result []*core.Entry
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			entry, err := readEntry(tx, makeEntryKey(c.info.Name, id))
			if err != nil {
				return err
			}
			if entry != nil {
				result = append(result, entry)
			}
		}
		return nil
	}, false)
	return result, err
}

func (c *Collection) Delete(ctx context.Context, ids ...string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	return c.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeEntryKey(c.info.Name, id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: %q", storage.ErrNotFound, id)
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

func (c *Collection) Count(ctx context.Context) (int, error) {
	if err := c.checkOpen(); err != nil {
		return 0, err
	}
	count := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = c.prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

func (c *Collection) List(ctx context.Context, afterID string, limit int) ([]*core.Entry, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if limit < 1 {
		return nil, nil
	}

	var result []*core.Entry
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = c.prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		start := c.prefix
		var after []byte
		if afterID != "" {
			after = makeEntryKey(c.info.Name, afterID)
			start = after
		}

		for iter.Seek(start); iter.Valid() && len(result) < limit; iter.Next() {
			item := iter.Item()
			if after != nil && bytes.Equal(item.Key(), after) {
				continue
			}
			entry, err := decodeItem(item)
			if err != nil {
				return err
			}
			result = append(result, entry)
		}
		return nil
	}, false)
	return result, err
}

// Query scans every entry in the collection. Entries without vectors or
// with a different dimension than the query are skipped.
func (c *Collection) Query(ctx context.Context, vector []float32, filter core.Filter, n int) ([]core.Neighbor, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if err := core.ValidateTopN(n); err != nil {
		return nil, err
	}

	results := make([]core.Neighbor, 0)
	skipped := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = c.prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			entry, err := decodeItem(iter.Item())
			if err != nil {
				return err
			}
			if len(entry.Vector) == 0 || !filter.Matches(entry.Metadata) {
				continue
			}
			if len(entry.Vector) != len(vector) {
				skipped++
				continue
			}

			distance, err := c.info.Metric.Distance(vector, entry.Vector)
			if err != nil {
				return err
			}
			results = append(results, core.Neighbor{ID: entry.ID, Distance: distance})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	if skipped > 0 {
		c.logger.Warn("skipped entries with mismatched dimension", "count", skipped, "query_dim", len(vector))
	}

	slices.SortFunc(results, func(a, b core.Neighbor) int {
		if d := cmp.Compare(a.Distance, b.Distance); d != 0 {
			return d
		}
		return cmp.Compare(a.ID, b.ID)
	})

	if len(results) > n {
		results = results[:n]
	}
	return results, nil
}

func decodeItem(item *badger.Item) (*core.Entry, error) {
	var entry *core.Entry
	err := item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalEntry(val)
		return err
	})
	return entry, err
}

func readEntry(tx *badger.Txn, key []byte) (*core.Entry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return decodeItem(item)
}

func readCollectionInfo(tx *badger.Txn, key []byte) (*core.CollectionInfo, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var info *core.CollectionInfo
	err = item.Value(func(val []byte) error {
		var err error
		info, err = storage.UnmarshalCollectionInfo(val)
		return err
	})
	return info, err
}
