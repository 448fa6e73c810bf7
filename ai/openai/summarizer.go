package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/rendezvous/ai"
	"github.com/poiesic/rendezvous/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Summarizer implements ai.Summarizer with an OpenAI-compatible chat model.
type Summarizer struct {
	client llms.Model
	logger *slog.Logger
}

func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ChatHost),
		openai.WithToken(config.ChatToken),
		openai.WithModel(config.ChatModel),
	)
	if err != nil {
		return nil, err
	}

	return newSummarizerWith(client), nil
}

func newSummarizerWith(client llms.Model) *Summarizer {
	return &Summarizer{
		client: client,
		logger: slog.Default().With("component", "openai-summarizer"),
	}
}

// NewSummarizer creates a summarizer for the configured chat host and model.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	return newSummarizer(config)
}

func (s *Summarizer) Summarize(ctx context.Context, kind ai.PromptKind, record core.Record) (string, error) {
	content, err := buildMessages(kind, record)
	if err != nil {
		return "", err
	}

	response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		s.logger.Error("failed to generate summary", "kind", kind, "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		s.logger.Warn("no choices returned from model", "kind", kind)
		return "", nil
	}

	summary := stripReasoning(response.Choices[0].Content)
	s.logger.Debug("summarized record", "kind", kind, "length", len(summary))
	return summary, nil
}

func buildMessages(kind ai.PromptKind, record core.Record) ([]llms.MessageContent, error) {
	prompt, err := systemPrompt(kind)
	if err != nil {
		return nil, err
	}
	text, err := record.Canonical()
	if err != nil {
		return nil, err
	}

	return []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}, nil
}
