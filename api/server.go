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


package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server exposes a Store and a Retriever over HTTP.
type Server struct {
	store         Store
	retriever     Retriever
	metrics       *Metrics
	eventMetadata map[string]string
	engine        *gin.Engine
	logger        *slog.Logger
}

type Option func(*Server)

// WithMetrics instruments every route and serves /metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEventMetadata attaches metadata to every event stored through
// /store_events.
func WithEventMetadata(metadata map[string]string) Option {
	return func(s *Server) {
		s.eventMetadata = metadata
	}
}

func NewServer(store Store, retriever Retriever, opts ...Option) *Server {
	s := &Server{
		store:     store,
		retriever: retriever,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "api")

	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.Use(requestContext(s.logger), requestLogger())
	if s.metrics != nil {
		engine.Use(instrument(s.metrics))
	}
	engine.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		loggerFrom(c).Error("panic while serving request", "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}))

	engine.GET("/health", s.health)
	s.post(engine, "/store/", s.storeTokens)
	s.post(engine, "/retrieve/", s.retrieveTokens)
	s.post(engine, "/store_events", s.storeEvents)
	s.post(engine, "/get_user_related_events", s.relatedEvents)
	if s.metrics != nil {
		engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	s.engine = engine
	return s
}

// post registers handler with and without a trailing slash.
func (s *Server) post(engine *gin.Engine, path string, handler gin.HandlerFunc) {
	engine.POST(path, handler)
	if alt, ok := toggleSlash(path); ok {
		engine.POST(alt, handler)
	}
}

func toggleSlash(path string) (string, bool) {
	if len(path) < 2 {
		return "", false
	}
	if path[len(path)-1] == '/' {
		return path[:len(path)-1], true
	}
	return path + "/", true
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down,
// giving in-flight requests up to shutdownTimeout to finish.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "addr", addr)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
