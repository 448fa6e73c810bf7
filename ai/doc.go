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

// Package ai provides abstractions for the AI services used by rendezvous.
//
// Two services are involved in every request: a Summarizer that asks a chat
// model to describe a structured record in one short paragraph, and an
// Embedder that turns that paragraph into a vector.
//
// # Implementation Packages
//
//   - ai/openai: implementation for OpenAI-compatible APIs (Ollama, DeepSeek, OpenRouter)
//   - ai/mock: deterministic test doubles
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, etc.) return
// interface types. Test utility constructors (mock.NewMockEmbedder,
// mock.NewMockSummarizer) return concrete types so tests can inject
// behavior and inspect call counts.
//
//	provider, err := openai.NewProvider(ai.NewConfig(
//	    ai.WithChatHost("https://api.deepseek.com/v1"),
//	    ai.WithChatToken(os.Getenv("DEEPSEEK_API_KEY")),
//	))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	summary, err := provider.Summarizer().Summarize(ctx, ai.PromptEvent, event)
//	vector, err := provider.Embedder().EmbedText(ctx, summary)
package ai
