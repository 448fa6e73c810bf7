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


// Package rendezvous wires the collection, the AI provider and the summary
// cache into a single service that stores and recommends events.
package rendezvous

import (
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/ai/breaker"
	"github.com/poiesic/rendezvous/ai/openai"
	"github.com/poiesic/rendezvous/cache"
	"github.com/poiesic/rendezvous/core"
	"github.com/poiesic/rendezvous/ingestion"
	"github.com/poiesic/rendezvous/reembed"
	"github.com/poiesic/rendezvous/refresh"
	"github.com/poiesic/rendezvous/search"
	"github.com/poiesic/rendezvous/storage"
	"github.com/poiesic/rendezvous/storage/badger"
)

// DefaultCollection is the collection used when none is configured.
const DefaultCollection = "descriptions"

type Service struct {
	backend    *badger.Backend
	collection *badger.Collection
	provider   ai.AIProvider
	cache      cache.SummaryCache
	pipeline   *ingestion.Pipeline
	retriever  *search.Retriever
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*options)

type options struct {
	collection       string
	metric           core.Metric
	aiConfig         *ai.Config
	provider         ai.AIProvider
	cache            cache.SummaryCache
	breaker          *breaker.Settings
	inMemory         bool
	poolSize         int
	pipelineOptions  []ingestion.Option
	retrieverOptions []search.Option
}

// WithCollection selects the collection and, when it is created, its
// metric. An empty metric accepts whatever the collection was created with.
func WithCollection(name string, metric core.Metric) Option {
	return func(o *options) {
		o.collection = name
		o.metric = metric
	}
}

// WithAIConfig configures the OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) Option {
	return func(o *options) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The service takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithCache memoizes summaries in c. The service takes ownership and closes it.
func WithCache(c cache.SummaryCache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithCircuitBreaker guards the model calls with circuit breakers.
func WithCircuitBreaker(settings breaker.Settings) Option {
	return func(o *options) {
		o.breaker = &settings
	}
}

// WithInMemory keeps all data in memory. The path passed to Open is ignored.
func WithInMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// WithPoolSize sets how many records are summarized concurrently.
func WithPoolSize(size int) Option {
	return func(o *options) {
		o.poolSize = size
	}
}

// WithPipelineOptions passes extra options to the ingestion pipeline.
func WithPipelineOptions(opts ...ingestion.Option) Option {
	return func(o *options) {
		o.pipelineOptions = append(o.pipelineOptions, opts...)
	}
}

// WithRetrieverOptions passes extra options to the retriever.
func WithRetrieverOptions(opts ...search.Option) Option {
	return func(o *options) {
		o.retrieverOptions = append(o.retrieverOptions, opts...)
	}
}

// Open opens (or creates) the database at path and the configured
// collection, and builds the pipeline and retriever on top of them.
func Open(path string, opts ...Option) (*Service, error) {
	o := &options{
		collection: DefaultCollection,
		aiConfig:   ai.DefaultConfig(),
		poolSize:   1,
	}
	for _, opt := range opts {
		opt(o)
	}

	s := &Service{
		provider: o.provider,
		cache:    o.cache,
		logger:   slog.Default().With("component", "service"),
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}

	var err error
	s.backend, err = badger.OpenBackend(path, o.inMemory)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.collection, err = badger.NewCollection(s.backend, o.collection, o.metric)
	if err != nil {
		s.Close()
		return nil, err
	}

	if s.provider == nil {
		s.provider, err = openai.NewProvider(o.aiConfig)
		if err != nil {
			s.Close()
			return nil, err
		}
	}
	if o.breaker != nil {
		s.provider = breaker.Wrap(s.provider, *o.breaker)
	}

	summarizer := cache.NewSummarizer(s.provider.Summarizer(), s.cache, o.aiConfig.ChatModel)

	pipelineOpts := append([]ingestion.Option{
		ingestion.WithPoolSize(o.poolSize),
		ingestion.WithSummarizer(summarizer),
	}, o.pipelineOptions...)
	s.pipeline, err = ingestion.NewPipeline(s.collection, s.provider, pipelineOpts...)
	if err != nil {
		s.Close()
		return nil, err
	}

	retrieverOpts := append([]search.Option{search.WithSummarizer(summarizer)}, o.retrieverOptions...)
	s.retriever, err = search.NewRetriever(s.collection, s.provider, retrieverOpts...)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.logger.Info("service opened",
		"path", path, "in_memory", o.inMemory,
		"collection", s.collection.Name(), "metric", s.collection.Metric())
	return s, nil
}

func (s *Service) Pipeline() *ingestion.Pipeline {
	return s.pipeline
}

func (s *Service) Retriever() *search.Retriever {
	return s.retriever
}

func (s *Service) Collection() storage.Collection {
	return s.collection
}

func (s *Service) Provider() ai.AIProvider {
	return s.provider
}

// NewReembedder re-embeds the collection with the service's embedder.
func (s *Service) NewReembedder(progress io.Writer, config *reembed.Config) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(s.collection, s.provider.Embedder(), config, progress)
}

// NewRefreshJob stores new and changed events from source through the
// service's pipeline.
func (s *Service) NewRefreshJob(source refresh.Source, config *refresh.Config, opts ...refresh.Option) (*refresh.Job, error) {
	return refresh.NewJob(source, s.collection, s.pipeline, config, opts...)
}

// Close releases the pipeline, the AI provider, the collection, the cache
// and the database, in that order.
func (s *Service) Close() error {
	var errs []error

	if s.pipeline != nil {
		s.pipeline.Release()
	}
	if s.provider != nil {
		if err := s.provider.Close(); err != nil {
			s.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if s.collection != nil {
		if err := s.collection.Close(); err != nil {
			s.logger.Error("error closing collection", "err", err)
			errs = append(errs, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			s.logger.Error("error closing summary cache", "err", err)
			errs = append(errs, err)
		}
	}
	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			s.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
