package openai

import "strings"

const reasoningEnd = "</think>"

// stripReasoning drops a reasoning trace emitted before the answer by
// reasoning models, keeping only the text after the last closing tag.
func stripReasoning(s string) string {
	if i := strings.LastIndex(s, reasoningEnd); i >= 0 {
		s = s[i+len(reasoningEnd):]
	}
	return strings.TrimSpace(s)
}
