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


package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/rendezvous"
	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/cache"
	"github.com/poiesic/rendezvous/refresh"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := loadDotEnv(".env"); err != nil {
		log.Fatal(err)
	}
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "rendezvous",
		Usage: "Event recommendation service backed by a vector collection",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "./data",
				EnvVars: []string{"DB_PATH"},
			},
			&cli.StringFlag{
				Name:    "collection",
				Usage:   "Name of the vector collection",
				Value:   rendezvous.DefaultCollection,
				EnvVars: []string{"COLLECTION_NAME"},
			},
			&cli.StringFlag{
				Name:    "distance",
				Usage:   "Distance metric used when the collection is created (ip, cosine, l2)",
				Value:   "ip",
				EnvVars: []string{"DISTANCE_TYPE"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				Value:   "http://localhost:11434/v1",
				EnvVars: []string{"EMBEDDING_HOST"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   "mxbai-embed-large",
				EnvVars: []string{"EMBEDDER"},
			},
			&cli.StringFlag{
				Name:    "llm-host",
				Usage:   "Chat model host URL used to summarize records",
				Value:   "http://localhost:11434/v1",
				EnvVars: []string{"LLM_HOST"},
			},
			&cli.StringFlag{
				Name:    "llm",
				Usage:   "Chat model name used to summarize records",
				Value:   "deepseek-r1:8b",
				EnvVars: []string{"LLM"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for the chat host (any value for local servers)",
				Value:   "none",
				EnvVars: []string{"DEEPSEEK_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "redis-addr",
				Usage:   "Redis address for the summary cache (in-memory cache when empty)",
				EnvVars: []string{"REDIS_ADDR"},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{"REDIS_PASSWORD"},
			},
			&cli.DurationFlag{
				Name:    "summary-cache-ttl",
				Usage:   "How long summaries stay cached",
				Value:   cache.DefaultTTL,
				EnvVars: []string{"SUMMARY_CACHE_TTL"},
			},
			&cli.IntFlag{
				Name:    "pool-size",
				Usage:   "Number of records summarized concurrently",
				Value:   4,
				EnvVars: []string{"POOL_SIZE"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "Address the HTTP server listens on",
						Value:   "localhost:8000",
						EnvVars: []string{"LISTEN_ADDR"},
					},
					&cli.StringFlag{
						Name:    "refresh-schedule",
						Usage:   "Cron schedule for refreshing events from the event source",
						Value:   refresh.DefaultSchedule,
						EnvVars: []string{"REFRESH_SCHEDULE"},
					},
					&cli.DurationFlag{
						Name:  "shutdown-timeout",
						Usage: "How long to wait for in-flight requests on shutdown",
						Value: 10 * time.Second,
					},
				}, sourceFlags()...),
			},
			{
				Name:      "store",
				Usage:     "Summarize and store the records in a JSON file",
				ArgsUsage: " ",
				Action:    storeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON file holding an array of records",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "events",
						Usage: "Summarize records as events instead of user profiles",
					},
					&cli.StringFlag{
						Name:  "id-field",
						Usage: "Record field holding the record id",
						Value: refresh.DefaultIDField,
					},
				},
			},
			{
				Name:      "retrieve",
				Usage:     "Print the stored entries nearest to the given words",
				ArgsUsage: "WORD...",
				Action:    retrieveCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "top-n",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
				},
			},
			{
				Name:   "refresh",
				Usage:  "Store new and changed events from the event source once",
				Action: refreshCommand,
				Flags:  sourceFlags(),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed every entry of the collection with the current embedding model",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of entries to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N entries",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "normalize",
						Usage: "Scale the new embeddings to unit length",
					},
				},
			},
		},
	}
}

func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "events-file",
			Usage:   "JSON file holding the current events",
			EnvVars: []string{"EVENTS_FILE"},
		},
		&cli.StringFlag{
			Name:    "events-url",
			Usage:   "URL returning the current events as JSON",
			EnvVars: []string{"EVENTS_URL"},
		},
		&cli.IntFlag{
			Name:  "refresh-batch-size",
			Usage: "Number of events summarized and stored together",
			Value: refresh.DefaultConfig().BatchSize,
		},
		&cli.Float64Flag{
			Name:    "refresh-rate",
			Usage:   "Maximum batches per second sent to the models (0 = unlimited)",
			EnvVars: []string{"REFRESH_RATE"},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func aiConfig(c *cli.Context) (*ai.Config, error) {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatHost(c.String("llm-host")),
		ai.WithChatModel(c.String("llm")),
		ai.WithChatToken(c.String("api-key")),
	)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	return config, nil
}
