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

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntry indicates an Entry failed validation.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrEmptyID indicates an entry or request item has no identifier.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrEmptyVector indicates an entry has no embedding.
	ErrEmptyVector = errors.New("vector cannot be empty")

	// ErrInvalidTopN indicates a result bound that is not a positive integer.
	ErrInvalidTopN = errors.New("top_n must be a positive integer")

	// ErrInvalidMetric indicates an unknown distance metric name.
	ErrInvalidMetric = errors.New("invalid distance metric")

	// ErrDimensionMismatch indicates two vectors of different lengths were compared.
	ErrDimensionMismatch = errors.New("vector dimensions differ")

	// ErrMalformedNeighbor indicates a neighbor pair could not be decoded.
	ErrMalformedNeighbor = errors.New("neighbor must be an [id, distance] pair")

	// ErrTruncatedData indicates encoded data ended early or declared an impossible length.
	ErrTruncatedData = errors.New("truncated data")
)
