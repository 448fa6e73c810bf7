package refresh

import "errors"

var (
	// ErrSourceRequired is returned when a job has no event source
	ErrSourceRequired = errors.New("event source is required")

	// ErrCollectionRequired is returned when a job has no collection
	ErrCollectionRequired = errors.New("collection is required")

	// ErrStoreRequired is returned when a job has nowhere to store events
	ErrStoreRequired = errors.New("record store is required")

	// ErrUnexpectedStatus is returned when an event feed answers with a non-2xx status
	ErrUnexpectedStatus = errors.New("unexpected response status")

	// ErrInvalidSchedule is returned for cron specs that cannot be parsed
	ErrInvalidSchedule = errors.New("invalid refresh schedule")
)
