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

package storage

import "errors"

var (
	// ErrNotFound indicates that the requested entry was not found.
	ErrNotFound = errors.New("entry not found")

	// ErrStorageClosed indicates that the storage backend or collection is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidCollectionName indicates a collection name that is empty or
	// contains ':' or whitespace.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrMetricMismatch indicates a collection was reopened with a different distance metric.
	ErrMetricMismatch = errors.New("collection distance metric cannot be changed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)
