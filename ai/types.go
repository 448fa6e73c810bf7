package ai

import (
	"errors"
	"fmt"
)

// ErrUnknownPromptKind indicates a prompt kind with no instructions.
var ErrUnknownPromptKind = errors.New("unknown prompt kind")

// PromptKind selects the instructions a Summarizer gives the model.
type PromptKind string

const (
	// PromptEvent summarizes an event description without inventing details.
	PromptEvent PromptKind = "event"

	// PromptInterest describes the kind of event a person would most likely
	// attend, given their profile. Its output is used as a query against
	// stored event summaries.
	PromptInterest PromptKind = "interest"
)

// PromptKinds lists every supported kind.
var PromptKinds = []PromptKind{PromptEvent, PromptInterest}

// ParsePromptKind converts a name into a PromptKind.
func ParsePromptKind(s string) (PromptKind, error) {
	for _, k := range PromptKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPromptKind, s)
}
