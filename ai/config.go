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

package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for a local Ollama server
	EmbeddingHost string

	// ChatHost is the base URL for the chat model used to summarize records.
	// Example: "https://api.deepseek.com/v1" or "https://openrouter.ai/api/v1"
	ChatHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "mxbai-embed-large", "nomic-embed-text"
	EmbeddingModel string

	// ChatModel is the model identifier used to summarize records.
	// Example: "deepseek-r1:8b", "deepseek-chat"
	ChatModel string

	// ChatToken is the API key sent to the chat host.
	// Local OpenAI-compatible servers accept any value.
	ChatToken string

	// EmbeddingToken is the API key sent to the embedding host.
	EmbeddingToken string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithChatHost sets the chat service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithHost sets both embedding and chat hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.ChatHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithChatToken sets the chat API key. An empty key leaves the default in place.
func WithChatToken(token string) ConfigOption {
	return func(c *Config) {
		if token != "" {
			c.ChatToken = token
		}
	}
}

// WithEmbeddingToken sets the embedding API key. An empty key leaves the default in place.
func WithEmbeddingToken(token string) ConfigOption {
	return func(c *Config) {
		if token != "" {
			c.EmbeddingToken = token
		}
	}
}

// DefaultConfig returns a Config for a local Ollama server exposing both
// models through its OpenAI-compatible API.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		ChatHost:       defaultHost,
		EmbeddingModel: "mxbai-embed-large",
		ChatModel:      "deepseek-r1:8b",
		ChatToken:      "none",
		EmbeddingToken: "none",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example with a hosted chat model:
//
//	cfg := NewConfig(
//	    WithChatHost("https://api.deepseek.com/v1"),
//	    WithChatModel("deepseek-chat"),
//	    WithChatToken(os.Getenv("DEEPSEEK_API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, DeepSeek, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.ChatHost = normalizeHost(c.ChatHost)
}

func normalizeHost(host string) string {
	if host == "" {
		return host
	}
	host = strings.TrimSuffix(host, "/")
	if !strings.HasSuffix(host, "/v1") {
		host += "/v1"
	}
	return host
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.ChatHost == "" {
		return errors.New("ai config: ChatHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	if c.ChatToken == "" {
		return errors.New("ai config: ChatToken is required")
	}
	if c.EmbeddingToken == "" {
		return errors.New("ai config: EmbeddingToken is required")
	}
	return nil
}
