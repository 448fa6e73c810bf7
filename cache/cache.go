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

// Package cache memoizes model summaries so records that have already been
// summarized are not sent to the chat model again.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/core"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a summary stays cached.
const DefaultTTL = 24 * time.Hour

const keyPrefix = "rendezvous:summary"

// SummaryCache stores summaries by key.
type SummaryCache interface {
	// Get returns the cached summary and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a summary under key.
	Set(ctx context.Context, key, summary string) error

	// Close releases the cache connection.
	Close() error
}

// SummaryKey derives the cache key for summarizing record with kind using model.
func SummaryKey(model string, kind ai.PromptKind, record core.Record) (string, error) {
	text, err := record.Canonical()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%s:%016x", keyPrefix, kind, core.Fingerprint(model+"\x00"+text)), nil
}

// RedisConfig holds connection settings for the Redis summary cache.
type RedisConfig struct {
	Address  string
	Password string
	Database int
	TTL      time.Duration
}

// Redis is a SummaryCache backed by Redis.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ SummaryCache = (*Redis)(nil)

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Address, err)
	}

	return NewRedisWithClient(client, cfg.TTL), nil
}

// NewRedisWithClient wraps an existing client. A non-positive ttl selects DefaultTTL.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "redis-cache"),
	}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	summary, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return summary, true, nil
}

func (r *Redis) Set(ctx context.Context, key, summary string) error {
	return r.client.Set(ctx, key, summary, r.ttl).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop never stores anything.
type Noop struct{}

var _ SummaryCache = Noop{}

func (Noop) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Noop) Set(context.Context, string, string) error          { return nil }
func (Noop) Close() error                                        { return nil }
