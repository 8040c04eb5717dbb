package ngram

import (
	"io"
	"log/slog"
	"math/rand/v2"
)

const (
	// DefaultStart is the sentinel token that pads the beginning of every learned sentence.
	DefaultStart = "%startf%"
	// DefaultEnd is the sentinel token that pads the end of every learned sentence.
	DefaultEnd = "%endf%"
	// DefaultSeparation is the string used to split input text into tokens.
	DefaultSeparation = " "
	// DefaultGrams is the window width of a Chain.
	DefaultGrams = 3
	// DefaultIndexedGrams is the slice width an IndexedChain uses when generating.
	DefaultIndexedGrams = 2
	// DefaultMaxSteps bounds the number of walk steps a single Generate call may take.
	DefaultMaxSteps = 4096
)

// settings collects construction parameters shared by Chain and IndexedChain.
type settings struct {
	grams      int
	start      string
	end        string
	separation string
	config     *IndexedConfig
	rng        *rand.Rand
	logger     *slog.Logger
}

// Option configures a Chain or IndexedChain at construction time.
type Option func(*settings)

// WithGrams sets the window width of a Chain; values of 1 or less fall back to
// DefaultGrams. For an IndexedChain it sets the default slice width used by
// Generate; values below 1 fall back to DefaultIndexedGrams.
func WithGrams(n int) Option {
	return func(s *settings) { s.grams = n }
}

// WithSentinels sets the start and end tokens used to pad learned sentences.
// They must never equal a token produced from real input.
// Only used by Chain.
func WithSentinels(start, end string) Option {
	return func(s *settings) {
		s.start = start
		s.end = end
	}
}

// WithSeparation sets the string used to split input text into tokens.
// Default: " "
func WithSeparation(sep string) Option {
	return func(s *settings) { s.separation = sep }
}

// WithDefaultConfig sets the stored generation defaults of an IndexedChain.
func WithDefaultConfig(cfg IndexedConfig) Option {
	return func(s *settings) { s.config = &cfg }
}

// WithRand sets the random source used to choose between candidate continuations.
// By default the package-level source of math/rand/v2 is used.
func WithRand(r *rand.Rand) Option {
	return func(s *settings) { s.rng = r }
}

// WithLogger sets the logger. By default all logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// newSettings applies opts over the defaults. A grams value below minGrams is
// replaced with defaultGrams.
func newSettings(defaultGrams, minGrams int, opts []Option) *settings {
	s := &settings{
		grams:      defaultGrams,
		start:      DefaultStart,
		end:        DefaultEnd,
		separation: DefaultSeparation,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.grams < minGrams {
		s.grams = defaultGrams
	}
	if s.separation == "" {
		s.separation = DefaultSeparation
	}
	return s
}

// generateOptions holds per-call overrides. A nil field means "not set" and
// falls back to the chain's stored default, so an explicit zero value is
// still an override.
type generateOptions struct {
	from     *string
	grams    *int
	backward *bool
	maxSteps int
}

// GenerateOption configures a single Generate call.
type GenerateOption func(*generateOptions)

// WithFrom sets the token generation starts from. For a Chain this replaces the
// start sentinel; for an IndexedChain an empty string means "pick a random sentence".
func WithFrom(word string) GenerateOption {
	return func(o *generateOptions) { o.from = &word }
}

// WithGenerateGrams overrides the slice width of an IndexedChain for one call.
// Values below 1 are rejected with ErrInvalidArgument.
func WithGenerateGrams(n int) GenerateOption {
	return func(o *generateOptions) { o.grams = &n }
}

// WithBackward overrides the walking direction of an IndexedChain for one call.
func WithBackward(backward bool) GenerateOption {
	return func(o *generateOptions) { o.backward = &backward }
}

// WithMaxSteps sets the maximum number of walk steps. A value of 0 or less
// restores DefaultMaxSteps.
func WithMaxSteps(n int) GenerateOption {
	return func(o *generateOptions) { o.maxSteps = n }
}

func newGenerateOptions(opts []GenerateOption) *generateOptions {
	o := &generateOptions{maxSteps: DefaultMaxSteps}
	for _, opt := range opts {
		opt(o)
	}
	if o.maxSteps <= 0 {
		o.maxSteps = DefaultMaxSteps
	}
	return o
}

// pick returns a uniformly random index in [0, n).
func pick(rng *rand.Rand, n int) int {
	if rng != nil {
		return rng.IntN(n)
	}
	return rand.IntN(n)
}
