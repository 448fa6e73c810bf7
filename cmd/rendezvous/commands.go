package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/rendezvous"
	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/ai/breaker"
	"github.com/poiesic/rendezvous/api"
	"github.com/poiesic/rendezvous/cache"
	"github.com/poiesic/rendezvous/core"
	"github.com/poiesic/rendezvous/ingestion"
	"github.com/poiesic/rendezvous/reembed"
	"github.com/poiesic/rendezvous/refresh"
	"github.com/poiesic/rendezvous/search"
	"github.com/urfave/cli/v2"
)

var errNoEventSource = errors.New("no event source configured: set --events-file or --events-url")

func openService(c *cli.Context, extra ...rendezvous.Option) (*rendezvous.Service, error) {
	metric, err := core.ParseMetric(c.String("distance"))
	if err != nil {
		return nil, err
	}
	config, err := aiConfig(c)
	if err != nil {
		return nil, err
	}
	summaries, err := openCache(c)
	if err != nil {
		return nil, err
	}

	opts := append([]rendezvous.Option{
		rendezvous.WithCollection(c.String("collection"), metric),
		rendezvous.WithAIConfig(config),
		rendezvous.WithCache(summaries),
		rendezvous.WithCircuitBreaker(breaker.DefaultSettings()),
		rendezvous.WithPoolSize(c.Int("pool-size")),
	}, extra...)

	s, err := rendezvous.Open(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return s, nil
}

// openCache connects to Redis when an address is configured and falls
// back to an in-process cache otherwise.
func openCache(c *cli.Context) (cache.SummaryCache, error) {
	ttl := c.Duration("summary-cache-ttl")
	addr := c.String("redis-addr")
	if addr == "" {
		return cache.NewMemory(cache.DefaultMemorySize, ttl), nil
	}
	return cache.NewRedis(c.Context, cache.RedisConfig{
		Address:  addr,
		Password: c.String("redis-password"),
		TTL:      ttl,
	})
}

// eventSource returns the configured event source, preferring the file.
func eventSource(c *cli.Context) (refresh.Source, error) {
	if path := c.String("events-file"); path != "" {
		return &refresh.FileSource{Path: path}, nil
	}
	if url := c.String("events-url"); url != "" {
		return &refresh.HTTPSource{URL: url}, nil
	}
	return nil, errNoEventSource
}

func refreshConfig(c *cli.Context) *refresh.Config {
	config := refresh.DefaultConfig()
	config.BatchSize = c.Int("refresh-batch-size")
	config.BatchesPerSecond = c.Float64("refresh-rate")
	return config
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := api.NewMetrics()
	s, err := openService(c,
		rendezvous.WithPipelineOptions(ingestion.WithStoredHook(metrics.EntriesStored)),
		rendezvous.WithRetrieverOptions(search.WithMonitor(metrics)),
	)
	if err != nil {
		return err
	}
	defer s.Close()

	source, err := eventSource(c)
	switch {
	case errors.Is(err, errNoEventSource):
		slog.Info("event refresh disabled", "reason", err)
	case err != nil:
		return err
	default:
		job, err := s.NewRefreshJob(source, refreshConfig(c), refresh.WithRunHook(metrics.RefreshCompleted))
		if err != nil {
			return fmt.Errorf("failed to create refresh job: %w", err)
		}
		scheduler, err := refresh.NewScheduler(job, c.String("refresh-schedule"), refresh.DefaultRunTimeout)
		if err != nil {
			return err
		}
		scheduler.Start()
		slog.Info("event refresh scheduled", "schedule", c.String("refresh-schedule"), "next", scheduler.Next())
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
			defer cancel()
			if err := scheduler.Stop(stopCtx); err != nil {
				slog.Warn("refresh still running at shutdown", "err", err)
			}
		}()
	}

	gin.SetMode(gin.ReleaseMode)
	server := api.NewServer(s.Pipeline(), s.Retriever(), api.WithMetrics(metrics))
	return server.ListenAndServe(ctx, c.String("listen"), c.Duration("shutdown-timeout"))
}

func storeCommand(c *cli.Context) error {
	ctx := c.Context

	f, err := os.Open(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to open records: %w", err)
	}
	records, err := refresh.DecodeEvents(f, c.String("id-field"))
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to read records: %w", err)
	}
	records = refresh.Dedupe(records)

	kind := ai.PromptInterest
	if c.Bool("events") {
		kind = ai.PromptEvent
	}

	s, err := openService(c)
	if err != nil {
		return err
	}
	defer s.Close()

	ids := make([]string, len(records))
	batch := make([]core.Record, len(records))
	for i, r := range records {
		ids[i] = r.ID
		batch[i] = r.Record
	}

	stored, err := s.Pipeline().StoreRecords(ctx, kind, batch, ids, nil)
	if err != nil {
		return fmt.Errorf("store failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Stored %d %s records in collection %s\n", stored, kind, s.Collection().Name())
	return nil
}

func retrieveCommand(c *cli.Context) error {
	words := c.Args().Slice()
	if len(words) == 0 {
		return errors.New("at least one word is required")
	}
	if err := core.ValidateTopN(c.Int("top-n")); err != nil {
		return err
	}

	s, err := openService(c)
	if err != nil {
		return err
	}
	defer s.Close()

	query := strings.Join(words, " ")
	results, err := s.Retriever().RetrieveTokens(c.Context, [][]string{words}, []string{query}, nil, c.Int("top-n"))
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", err)
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(results[query])
}

func refreshCommand(c *cli.Context) error {
	source, err := eventSource(c)
	if err != nil {
		return err
	}

	s, err := openService(c)
	if err != nil {
		return err
	}
	defer s.Close()

	job, err := s.NewRefreshJob(source, refreshConfig(c), refresh.WithProgress(os.Stderr))
	if err != nil {
		return fmt.Errorf("failed to create refresh job: %w", err)
	}

	start := time.Now()
	result, err := job.Run(c.Context)
	if err != nil {
		return fmt.Errorf("refresh failed: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Fetched %d events: %d unchanged, %d stored in %v\n",
		result.Fetched, result.Unchanged, result.Stored, time.Since(start).Round(time.Millisecond))
	return nil
}

func reembedCommand(c *cli.Context) error {
	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Normalize:      c.Bool("normalize"),
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	s, err := openService(c)
	if err != nil {
		return err
	}
	defer s.Close()

	reembedder, err := s.NewReembedder(os.Stderr, config)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reembedder.Run(c.Context); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}
