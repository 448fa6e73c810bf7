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

// Package search implements the read path of rendezvous.
//
// A Retriever embeds a query and asks the collection for its nearest
// entries. Results are (id, distance) pairs in ascending distance under the
// collection's metric, at most top_n of them. Batch variants zip queries
// with caller ids and return one result list per id.
//
// Recommend first turns each record into a query through the summarizer,
// typically describing the kind of event a user profile would enjoy.
package search
