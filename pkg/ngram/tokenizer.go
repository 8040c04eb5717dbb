package ngram

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Tokenizer splits text on a separation string. Runs of whitespace are first
// collapsed into a single separator so that repeated spacing never yields
// empty tokens.
type Tokenizer struct {
	separation string
}

// NewTokenizer creates a tokenizer for the given separation string.
// An empty separation falls back to DefaultSeparation.
func NewTokenizer(separation string) *Tokenizer {
	if separation == "" {
		separation = DefaultSeparation
	}
	return &Tokenizer{separation: separation}
}

// Separation returns the configured separation string.
func (t *Tokenizer) Separation() string {
	return t.separation
}

// Split returns the tokens of text in order. Trimmed-empty text has no tokens.
func (t *Tokenizer) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	collapsed := whitespaceRegex.ReplaceAllLiteralString(text, t.separation)

	parts := strings.Split(collapsed, t.separation)
	tokens := parts[:0]
	for _, part := range parts {
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}
