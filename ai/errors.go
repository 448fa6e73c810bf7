package ai

import "errors"

// ErrModelUnavailable indicates that calls to a model are being refused
// because it failed repeatedly. Callers may try again later.
var ErrModelUnavailable = errors.New("model temporarily unavailable")
