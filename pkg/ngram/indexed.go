package ngram

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strings"
	"unicode/utf8"
)

// IndexedConfig holds the stored generation defaults of an IndexedChain.
type IndexedConfig struct {
	// From is the word generation starts from. Empty means a random sentence.
	From string `json:"from"`
	// Grams is the number of indices taken from a sentence per walk step.
	Grams int `json:"grams"`
	// Backward walks toward the start of sentences instead of the end.
	Backward bool `json:"backward"`
}

// DefaultIndexedConfig returns the generation defaults of a new IndexedChain.
func DefaultIndexedConfig() IndexedConfig {
	return IndexedConfig{From: "", Grams: DefaultIndexedGrams, Backward: false}
}

// IndexedChain interns every learned word into a dictionary and stores whole
// sentences as dictionary indices. Generation jumps between sentences that
// share a word, taking a slice of up to Grams indices next to it each step.
//
// An IndexedChain is not safe for concurrent use.
type IndexedChain struct {
	dictionary []string
	lookup     map[string]int
	corpus     [][]int
	config     IndexedConfig
	tokenizer  *Tokenizer
	rng        *rand.Rand
	logger     *slog.Logger
}

// NewIndexedChain creates an empty IndexedChain with DefaultIndexedConfig,
// unless WithDefaultConfig or WithGrams say otherwise.
func NewIndexedChain(opts ...Option) *IndexedChain {
	s := newSettings(DefaultIndexedGrams, 1, opts)
	config := DefaultIndexedConfig()
	config.Grams = s.grams
	if s.config != nil {
		config = *s.config
		if config.Grams <= 0 {
			config.Grams = s.grams
		}
	}
	return &IndexedChain{
		dictionary: []string{},
		lookup:     make(map[string]int),
		corpus:     [][]int{},
		config:     config,
		tokenizer:  NewTokenizer(s.separation),
		rng:        s.rng,
		logger:     s.logger,
	}
}

// SetLogger sets the logger for the IndexedChain. A nil logger is ignored.
func (c *IndexedChain) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Config returns the stored generation defaults.
func (c *IndexedChain) Config() IndexedConfig {
	return c.config
}

// SetConfig replaces the stored generation defaults. A Grams value below 1 is
// rejected with ErrInvalidArgument and leaves the chain unchanged.
func (c *IndexedChain) SetConfig(config IndexedConfig) error {
	if config.Grams < 1 {
		return fmt.Errorf("grams must be at least 1, got %d: %w", config.Grams, ErrInvalidArgument)
	}
	c.config = config
	return nil
}

// Len returns the number of learned sentences.
func (c *IndexedChain) Len() int {
	return len(c.corpus)
}

// Learn splits sentence into words, interns every word in the dictionary and
// appends the resulting indices to the corpus as a new sentence. Text that is
// not valid UTF-8 is rejected with ErrInvalidArgument before anything changes.
func (c *IndexedChain) Learn(sentence string) error {
	if !utf8.ValidString(sentence) {
		return fmt.Errorf("sentence is not valid UTF-8 text: %w", ErrInvalidArgument)
	}

	tokens := c.tokenizer.Split(sentence)
	indices := make([]int, 0, len(tokens))
	added := 0
	for _, token := range tokens {
		idx, ok := c.lookup[token]
		if !ok {
			idx = len(c.dictionary)
			c.dictionary = append(c.dictionary, token)
			c.lookup[token] = idx
			added++
		}
		indices = append(indices, idx)
	}
	c.corpus = append(c.corpus, indices)

	c.logger.Debug("Sentence learned",
		slog.Int("tokens", len(tokens)),
		slog.Int("words_added", added),
		slog.Int("dictionary_size", len(c.dictionary)),
		slog.Int("corpus_size", len(c.corpus)),
	)
	return nil
}

// Generate produces a sentence by walking the corpus. Options given to this
// call override the stored config field by field; a field that is not given
// keeps its stored value.
//
// When the start word is not in the dictionary, or nothing was learned yet,
// Generate returns "" and a nil error. When the walk reaches an index that no
// sentence contains, the error wraps ErrStalled.
func (c *IndexedChain) Generate(opts ...GenerateOption) (string, error) {
	options := newGenerateOptions(opts)

	from := c.config.From
	if options.from != nil {
		from = *options.from
	}
	grams := c.config.Grams
	if options.grams != nil {
		grams = *options.grams
	}
	backward := c.config.Backward
	if options.backward != nil {
		backward = *options.backward
	}
	if grams < 1 {
		return "", fmt.Errorf("grams must be at least 1, got %d: %w", grams, ErrInvalidArgument)
	}

	var seed int
	if from != "" {
		idx, ok := c.lookup[from]
		if !ok {
			c.logger.Debug("Generation skipped, unknown start word", slog.String("from", from))
			return "", nil
		}
		seed = idx
	} else {
		var ok bool
		if seed, ok = c.randomSeed(backward); !ok {
			return "", nil
		}
	}

	output := []int{seed}
	var candidates [][]int

	for step := 0; ; step++ {
		if step >= options.maxSteps {
			return "", fmt.Errorf("walk did not reach a sentence edge after %d steps: %w", step, ErrStepLimit)
		}

		last := output[len(output)-1]
		candidates = candidates[:0]
		for _, sentence := range c.corpus {
			if slices.Contains(sentence, last) {
				candidates = append(candidates, sentence)
			}
		}
		if len(candidates) == 0 {
			c.logger.Debug("Generation stalled",
				slog.String("last_word", c.dictionary[last]),
				slog.Int("generated_length", len(output)),
			)
			return "", fmt.Errorf("no sentence contains %q: %w", c.dictionary[last], ErrStalled)
		}

		sentence := candidates[pick(c.rng, len(candidates))]
		position := slices.Index(sentence, last)

		if backward {
			window := slices.Clone(sentence[max(0, position-grams):position])
			slices.Reverse(window)
			output = append(output, window...)
			if position-grams <= 0 {
				break
			}
		} else {
			start := position + 1
			if start == len(sentence) && len(sentence) > 1 {
				// Nothing follows the last word, so take the closing window instead.
				start = max(0, len(sentence)-grams)
			}
			end := min(len(sentence), start+grams)
			output = append(output, sentence[start:end]...)
			if end >= len(sentence) {
				break
			}
		}
	}

	if backward {
		slices.Reverse(output)
	}
	words := make([]string, len(output))
	for i, idx := range output {
		words[i] = c.dictionary[idx]
	}

	c.logger.Debug("Generation finished",
		slog.Bool("backward", backward),
		slog.Int("grams", grams),
		slog.Int("generated_length", len(words)),
	)
	return strings.Join(words, " "), nil
}

// randomSeed picks a random non-empty sentence and returns its first index,
// or its last one when walking backward. It reports false if there is none.
func (c *IndexedChain) randomSeed(backward bool) (int, bool) {
	var nonEmpty [][]int
	for _, sentence := range c.corpus {
		if len(sentence) > 0 {
			nonEmpty = append(nonEmpty, sentence)
		}
	}
	if len(nonEmpty) == 0 {
		return 0, false
	}
	sentence := nonEmpty[pick(c.rng, len(nonEmpty))]
	if backward {
		return sentence[len(sentence)-1], true
	}
	return sentence[0], true
}
