package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrCollectionRequired is returned when no collection is supplied
	ErrCollectionRequired = errors.New("collection is required")

	// ErrEmbedderRequired is returned when no embedder is supplied
	ErrEmbedderRequired = errors.New("embedder is required")
)
