package refresh

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/core"
	"github.com/poiesic/rendezvous/reembed"
	"github.com/poiesic/rendezvous/storage"
	"golang.org/x/time/rate"
)

// RecordStore summarizes and stores records. ingestion.Pipeline satisfies it.
type RecordStore interface {
	StoreRecords(ctx context.Context, kind ai.PromptKind, records []core.Record, ids []string, metadata map[string]string) (int, error)
}

// Config holds configuration for a refresh job.
type Config struct {
	// BatchSize is the number of events summarized and stored together
	BatchSize int

	// MaxRetries is the maximum number of attempts for each batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// BatchesPerSecond limits how fast batches are sent to the models; zero means unlimited
	BatchesPerSecond float64

	// Metadata is attached to every stored event
	Metadata map[string]string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:  20,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

// Result summarizes a single run.
type Result struct {
	Fetched   int // events returned by the source, after removing duplicate ids
	Unchanged int // events skipped because their stored fingerprint matches
	Stored    int // events summarized, embedded and written
}

// Job stores new and changed events from a Source.
type Job struct {
	source     Source
	collection storage.Collection
	store      RecordStore
	config     *Config
	limiter    *rate.Limiter
	progress   io.Writer
	hooks      []func(Result, error)
	logger     *slog.Logger
}

type Option func(*Job) error

// WithProgress writes progress lines to w.
func WithProgress(w io.Writer) Option {
	return func(j *Job) error {
		j.progress = w
		return nil
	}
}

// WithRunHook registers fn to be called after every run with its outcome.
func WithRunHook(fn func(Result, error)) Option {
	return func(j *Job) error {
		if fn != nil {
			j.hooks = append(j.hooks, fn)
		}
		return nil
	}
}

func NewJob(source Source, collection storage.Collection, store RecordStore, config *Config, opts ...Option) (*Job, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}

	limit := rate.Inf
	if config.BatchesPerSecond > 0 {
		limit = rate.Limit(config.BatchesPerSecond)
	}

	j := &Job{
		source:     source,
		collection: collection,
		store:      store,
		config:     config,
		limiter:    rate.NewLimiter(limit, 1),
		progress:   io.Discard,
		logger:     slog.Default().With("component", "refresh", "collection", collection.Name()),
	}
	for _, opt := range opts {
		if err := opt(j); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// Run fetches the events and stores those that are new or changed.
// Events are processed in batches; a failed batch is retried and, once
// retries are exhausted, aborts the run. Batches written before the
// failure stay stored.
func (j *Job) Run(ctx context.Context) (result Result, err error) {
	defer func() {
		for _, hook := range j.hooks {
			hook(result, err)
		}
	}()

	started := time.Now()
	events, err := j.source.Fetch(ctx)
	if err != nil {
		j.logger.Error("failed to fetch events", "err", err)
		return result, err
	}
	events = Dedupe(events)
	result.Fetched = len(events)

	changed, err := j.changed(ctx, events)
	if err != nil {
		return result, err
	}
	result.Unchanged = len(events) - len(changed)
	j.logger.Info("refresh started", "fetched", result.Fetched, "changed", len(changed))

	if len(changed) == 0 {
		return result, nil
	}

	tracker := reembed.NewProgressTracker(j.progress, len(changed), j.config.BatchSize, "events")
	tracker.Start()

	for start := 0; start < len(changed); start += j.config.BatchSize {
		batch := changed[start:min(start+j.config.BatchSize, len(changed))]
		if err := j.limiter.Wait(ctx); err != nil {
			return result, err
		}

		stored, err := j.storeBatch(ctx, batch)
		result.Stored += stored
		if err != nil {
			j.logger.Error("refresh aborted", "stored", result.Stored, "err", err)
			return result, err
		}
		tracker.Increment(len(batch))
	}
	tracker.Finish()

	j.logger.Info("refresh complete",
		"fetched", result.Fetched, "unchanged", result.Unchanged, "stored", result.Stored,
		"elapsed", time.Since(started))
	return result, nil
}

func (j *Job) storeBatch(ctx context.Context, batch []Event) (int, error) {
	records := make([]core.Record, len(batch))
	ids := make([]string, len(batch))
	for i, e := range batch {
		records[i] = e.Record
		ids[i] = e.ID
	}

	var stored int
	err := reembed.RetryWithBackoff(ctx, func() error {
		var err error
		stored, err = j.store.StoreRecords(ctx, ai.PromptEvent, records, ids, j.config.Metadata)
		return err
	}, j.config.MaxRetries, j.config.RetryDelay)
	if err != nil {
		return 0, fmt.Errorf("failed to store events %s..%s: %w", ids[0], ids[len(ids)-1], err)
	}
	return stored, nil
}

// changed drops events whose stored fingerprint equals the fingerprint of
// their current record.
func (j *Job) changed(ctx context.Context, events []Event) ([]Event, error) {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	existing, err := j.collection.GetMany(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored events: %w", err)
	}
	stored := make(map[string]uint64, len(existing))
	for _, entry := range existing {
		stored[entry.ID] = entry.Fingerprint
	}

	out := make([]Event, 0, len(events))
	for _, e := range events {
		fingerprint, err := e.Record.Fingerprint()
		if err != nil {
			return nil, fmt.Errorf("failed to fingerprint event %q: %w", e.ID, err)
		}
		if fp, ok := stored[e.ID]; ok && fp == fingerprint {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
