package ngram

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
)

// Chain is an n-gram chain that stores overlapping windows of literal tokens.
// Every learned sentence is padded with n start sentinels and n end sentinels,
// so generation can always begin at the start sentinel and stop at the end one.
//
// A Chain is not safe for concurrent use.
type Chain struct {
	grams     int
	start     string
	end       string
	tokenizer *Tokenizer
	corpus    [][]string
	rng       *rand.Rand
	logger    *slog.Logger
}

// NewChain creates an empty Chain. Without options it uses windows of 3 tokens,
// the default sentinels and a single space as separation.
func NewChain(opts ...Option) *Chain {
	s := newSettings(DefaultGrams, 2, opts)
	return &Chain{
		grams:     s.grams,
		start:     s.start,
		end:       s.end,
		tokenizer: NewTokenizer(s.separation),
		corpus:    [][]string{},
		rng:       s.rng,
		logger:    s.logger,
	}
}

// SetLogger sets the logger for the Chain. A nil logger is ignored.
func (c *Chain) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Grams returns the window width.
func (c *Chain) Grams() int {
	return c.grams
}

// Len returns the number of stored windows.
func (c *Chain) Len() int {
	return len(c.corpus)
}

// Learn splits text into tokens, pads it with sentinels and appends every
// window of n consecutive tokens to the corpus. Text that is empty after
// trimming is ignored. Learn returns the receiver so calls can be chained.
func (c *Chain) Learn(text string) *Chain {
	tokens := c.tokenizer.Split(text)
	if len(tokens) == 0 {
		return c
	}

	padded := make([]string, 0, len(tokens)+2*c.grams)
	for i := 0; i < c.grams; i++ {
		padded = append(padded, c.start)
	}
	padded = append(padded, tokens...)
	for i := 0; i < c.grams; i++ {
		padded = append(padded, c.end)
	}

	// The window made only of end sentinels is never useful, so stop one short.
	windows := len(padded) - c.grams
	for i := 0; i < windows; i++ {
		window := make([]string, c.grams)
		copy(window, padded[i:i+c.grams])
		c.corpus = append(c.corpus, window)
	}

	c.logger.Debug("Sentence learned",
		slog.Int("tokens", len(tokens)),
		slog.Int("windows_added", windows),
		slog.Int("corpus_size", len(c.corpus)),
	)
	return c
}

// Generate walks the corpus from the start sentinel, or from the token given
// with WithFrom (an empty one keeps the start sentinel), until a window ending
// in the end sentinel is chosen. Each step picks uniformly among all windows
// whose first token equals the current last token, so duplicated windows are
// proportionally more likely.
//
// An empty corpus yields "" and a nil error. If no window continues the walk,
// the returned error wraps ErrStalled.
func (c *Chain) Generate(opts ...GenerateOption) (string, error) {
	if len(c.corpus) == 0 {
		return "", nil
	}
	options := newGenerateOptions(opts)

	current := strings.TrimSpace(c.start)
	if options.from != nil && strings.TrimSpace(*options.from) != "" {
		current = strings.TrimSpace(*options.from)
	}
	end := strings.TrimSpace(c.end)

	output := []string{current}
	var candidates [][]string

	for step := 0; ; step++ {
		if step >= options.maxSteps {
			return "", fmt.Errorf("chain did not reach the end token after %d steps: %w", step, ErrStepLimit)
		}

		candidates = candidates[:0]
		for _, window := range c.corpus {
			if window[0] == current {
				candidates = append(candidates, window)
			}
		}
		if len(candidates) == 0 {
			c.logger.Debug("Generation stalled",
				slog.String("last_token", current),
				slog.Int("generated_length", len(output)),
			)
			return "", fmt.Errorf("no window starts with %q: %w", current, ErrStalled)
		}

		window := candidates[pick(c.rng, len(candidates))]
		output = append(output, window[1:]...)
		current = output[len(output)-1]

		if current == end {
			c.logger.Debug("Generation terminated by end token",
				slog.Int("steps", step+1),
				slog.Int("generated_length", len(output)),
			)
			break
		}
	}

	return c.clean(strings.Join(output, " ")), nil
}

// clean strips every sentinel from the joined output and normalizes spacing.
func (c *Chain) clean(text string) string {
	if c.start != "" {
		text = strings.ReplaceAll(text, c.start, " ")
	}
	if c.end != "" {
		text = strings.ReplaceAll(text, c.end, " ")
	}
	return strings.Join(strings.Fields(text), " ")
}
