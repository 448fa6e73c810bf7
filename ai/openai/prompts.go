package openai

import (
	"fmt"

	"github.com/poiesic/rendezvous/ai"
)

const eventPrompt = `You will receive a JSON object describing an event.
Work out what the event is about using only the details provided and general knowledge.
Do not invent properties of the event that are not supported by the details.
Reply with a single paragraph of at most 100 words summarizing the event.`

const interestPrompt = `You will receive a JSON object describing a person.
Work out the type of event this person would most likely be interested in attending.
Reply with a single paragraph of at most 100 words describing such an event.`

func systemPrompt(kind ai.PromptKind) (string, error) {
	switch kind {
	case ai.PromptEvent:
		return eventPrompt, nil
	case ai.PromptInterest:
		return interestPrompt, nil
	default:
		return "", fmt.Errorf("%w: %q", ai.ErrUnknownPromptKind, string(kind))
	}
}
