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

// Package ingestion implements the write path of rendezvous.
//
// A Pipeline takes a batch of items and caller supplied ids, zips them
// together (extra items or ids are dropped with a warning), and for each
// pair produces an entry in the collection:
//
//	record --summarize--> summary --embed--> vector --upsert--> entry
//
// Plain texts skip the summarize step. Summaries are computed on an ants
// worker pool whose size defaults to one, which keeps model calls for a
// request sequential. The whole batch is embedded in one call and written
// in one transaction, so a failure anywhere leaves the collection unchanged.
package ingestion
