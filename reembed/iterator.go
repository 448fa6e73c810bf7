// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"

	"github.com/poiesic/rendezvous/core"
	"github.com/poiesic/rendezvous/storage"
)

const (
	// DefaultBatchSize is the default number of entries to fetch in each batch
	DefaultBatchSize = 100
)

// EntryIterator walks every entry of a collection in ID order.
type EntryIterator struct {
	collection storage.Collection
	batchSize  int
}

// NewEntryIterator creates a new entry iterator.
// batchSize: number of entries to fetch in each batch (DefaultBatchSize when <= 0)
func NewEntryIterator(collection storage.Collection, batchSize int) *EntryIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &EntryIterator{
		collection: collection,
		batchSize:  batchSize,
	}
}

// ForEach calls fn for each batch of entries until the collection is
// exhausted or fn returns an error. Pages are read lazily, one batch at a
// time, so fn may rewrite the entries it receives. Context cancellation is
// checked between batches.
func (it *EntryIterator) ForEach(ctx context.Context, fn func([]*core.Entry) error) error {
	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := it.collection.List(ctx, afterID, it.batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		// remember the cursor before fn gets a chance to touch the entries
		afterID = batch[len(batch)-1].ID

		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < it.batchSize {
			return nil
		}
	}
}
