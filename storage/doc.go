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

// Package storage provides the storage abstraction layer for rendezvous.
//
// It defines the Collection interface, which decouples vector storage from
// the ingestion and retrieval code, together with the sentinel errors and
// entry serialization shared by backends.
//
// # Usage
//
// Open a persistent collection:
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
//	events, err := badger.NewCollection(backend, "events", core.MetricCosine)
//
// Use in tests with in-memory storage:
//
//	col, backend, err := badger.NewMemoryCollection("events", core.MetricInnerProduct)
//
// # Semantics
//
// Entry IDs are supplied by callers. Writing an existing ID replaces the
// stored entry. The distance metric is recorded when a collection is first
// created; reopening it with a different metric fails with ErrMetricMismatch.
//
// All implementations must be safe for concurrent use.
package storage
