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

// Package openai provides AI service implementations using OpenAI-compatible APIs.
//
// Embeddings and chat completions go through langchaingo, so any server
// speaking the OpenAI protocol works: a local Ollama instance, DeepSeek,
// OpenRouter or vLLM. Embedding and chat may live on different hosts.
//
// Reasoning models such as deepseek-r1 emit a trace terminated by </think>
// before their answer; the summarizer keeps only the answer.
//
// # Usage
//
//	provider, err := openai.NewProvider(ai.NewConfig(
//	    ai.WithEmbeddingHost("http://localhost:11434"), // /v1 added automatically
//	    ai.WithChatHost("https://api.deepseek.com"),
//	    ai.WithChatModel("deepseek-chat"),
//	    ai.WithChatToken(apiKey),
//	))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
package openai
