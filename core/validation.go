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


package core

import (
	"fmt"
)

// DefaultTopN is the result bound used when a caller omits one.
const DefaultTopN = 5

// ValidateEntry validates an Entry before it is written to a collection.
//
// Validation rules:
//   - ID must not be empty
//   - Vector must not be empty
//
// NOT validated:
//   - Document (an empty document is stored as is)
//   - Vector dimension (owned by the embedding model)
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyID)
	}

	if len(entry.Vector) == 0 {
		return fmt.Errorf("%w: %w (id %q)", ErrInvalidEntry, ErrEmptyVector, entry.ID)
	}

	return nil
}

// ValidateTopN rejects result bounds below one.
func ValidateTopN(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidTopN, n)
	}
	return nil
}
