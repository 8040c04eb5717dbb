package ngram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
)

// ChainSnapshot is the serializable representation of a Chain.
type ChainSnapshot struct {
	NGrams     int        `json:"nGrams"`
	Start      string     `json:"start"`
	End        string     `json:"end"`
	Separation string     `json:"separation"`
	Corpus     [][]string `json:"corpus"`
}

// IndexedSnapshot is the serializable representation of an IndexedChain.
type IndexedSnapshot struct {
	Corpus     [][]int       `json:"corpus"`
	Dictionary []string      `json:"dictionary"`
	Config     IndexedConfig `json:"config"`
}

// Snapshot returns a deep copy of the chain's state.
func (c *Chain) Snapshot() ChainSnapshot {
	return ChainSnapshot{
		NGrams:     c.grams,
		Start:      c.start,
		End:        c.end,
		Separation: c.tokenizer.Separation(),
		Corpus:     cloneRows(c.corpus),
	}
}

// RestoreChain builds a new Chain from a snapshot. The snapshot's slices are
// copied, so later changes to either side are not shared. Only the WithRand and
// WithLogger options are meaningful here; the rest of the state comes from the
// snapshot. Empty sentinels fall back to DefaultStart and DefaultEnd. A window
// whose length differs from NGrams is rejected with ErrInvalidSnapshot.
func RestoreChain(snap ChainSnapshot, opts ...Option) (*Chain, error) {
	s := newSettings(DefaultGrams, 2, opts)
	grams := snap.NGrams
	if grams <= 1 {
		grams = DefaultGrams
	}
	for i, window := range snap.Corpus {
		if len(window) != grams {
			return nil, fmt.Errorf("window %d has %d tokens, want %d: %w", i, len(window), grams, ErrInvalidSnapshot)
		}
	}

	start, end := snap.Start, snap.End
	if start == "" {
		start = DefaultStart
	}
	if end == "" {
		end = DefaultEnd
	}

	c := &Chain{
		grams:     grams,
		start:     start,
		end:       end,
		tokenizer: NewTokenizer(snap.Separation),
		corpus:    cloneRows(snap.Corpus),
		rng:       s.rng,
		logger:    s.logger,
	}
	if c.corpus == nil {
		c.corpus = [][]string{}
	}
	return c, nil
}

// Export writes the chain as indented JSON to w.
func (c *Chain) Export(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c.Snapshot()); err != nil {
		return fmt.Errorf("could not encode chain: %w", err)
	}
	c.logger.Info("Chain exported",
		slog.Int("n_grams", c.grams),
		slog.Int("windows_exported", len(c.corpus)),
	)
	return nil
}

// ImportChain reads a JSON snapshot from r and restores a Chain from it.
// Input that is not a JSON snapshot is rejected with ErrUnparseableSnapshot.
func ImportChain(r io.Reader, opts ...Option) (*Chain, error) {
	var snap ChainSnapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode chain snapshot: %v: %w", err, ErrUnparseableSnapshot)
	}
	c, err := RestoreChain(snap, opts...)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Chain imported",
		slog.Int("n_grams", c.grams),
		slog.Int("windows_imported", len(c.corpus)),
	)
	return c, nil
}

// ParseChain is a convenience wrapper around ImportChain for in-memory data.
func ParseChain(data []byte, opts ...Option) (*Chain, error) {
	return ImportChain(bytes.NewReader(data), opts...)
}

// Snapshot returns a deep copy of the chain's state.
func (c *IndexedChain) Snapshot() IndexedSnapshot {
	return IndexedSnapshot{
		Corpus:     cloneRows(c.corpus),
		Dictionary: slices.Clone(c.dictionary),
		Config:     c.config,
	}
}

// RestoreIndexedChain builds a new IndexedChain from a snapshot, copying all
// of its slices. Options may set the separation, random source and logger.
// A duplicate dictionary entry or a corpus index outside the dictionary is
// rejected with ErrInvalidSnapshot. A stored Grams below 1 is treated as unset
// and replaced with DefaultIndexedGrams.
func RestoreIndexedChain(snap IndexedSnapshot, opts ...Option) (*IndexedChain, error) {
	s := newSettings(DefaultIndexedGrams, 1, opts)

	lookup := make(map[string]int, len(snap.Dictionary))
	for i, word := range snap.Dictionary {
		if prev, ok := lookup[word]; ok {
			return nil, fmt.Errorf("dictionary word %q appears at %d and %d: %w", word, prev, i, ErrInvalidSnapshot)
		}
		lookup[word] = i
	}
	for i, sentence := range snap.Corpus {
		for _, idx := range sentence {
			if idx < 0 || idx >= len(snap.Dictionary) {
				return nil, fmt.Errorf("sentence %d references index %d outside a dictionary of %d words: %w", i, idx, len(snap.Dictionary), ErrInvalidSnapshot)
			}
		}
	}

	config := snap.Config
	if config.Grams < 1 {
		config.Grams = DefaultIndexedGrams
	}

	c := &IndexedChain{
		dictionary: slices.Clone(snap.Dictionary),
		lookup:     lookup,
		corpus:     cloneRows(snap.Corpus),
		config:     config,
		tokenizer:  NewTokenizer(s.separation),
		rng:        s.rng,
		logger:     s.logger,
	}
	if c.dictionary == nil {
		c.dictionary = []string{}
	}
	if c.corpus == nil {
		c.corpus = [][]int{}
	}
	return c, nil
}

// Export writes the chain as indented JSON to w.
func (c *IndexedChain) Export(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(c.Snapshot()); err != nil {
		return fmt.Errorf("could not encode indexed chain: %w", err)
	}
	c.logger.Info("Indexed chain exported",
		slog.Int("sentences_exported", len(c.corpus)),
		slog.Int("dictionary_exported", len(c.dictionary)),
	)
	return nil
}

// ImportIndexedChain reads a JSON snapshot from r and restores an IndexedChain
// from it. Input that is not a JSON snapshot is rejected with
// ErrUnparseableSnapshot and no chain is returned.
func ImportIndexedChain(r io.Reader, opts ...Option) (*IndexedChain, error) {
	var snap IndexedSnapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode indexed snapshot: %v: %w", err, ErrUnparseableSnapshot)
	}
	c, err := RestoreIndexedChain(snap, opts...)
	if err != nil {
		return nil, err
	}
	c.logger.Info("Indexed chain imported",
		slog.Int("sentences_imported", len(c.corpus)),
		slog.Int("dictionary_imported", len(c.dictionary)),
	)
	return c, nil
}

// ParseIndexedChain is a convenience wrapper around ImportIndexedChain for
// in-memory data. Empty data yields an empty chain with the default config.
func ParseIndexedChain(data []byte, opts ...Option) (*IndexedChain, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewIndexedChain(opts...), nil
	}
	return ImportIndexedChain(bytes.NewReader(data), opts...)
}

func cloneRows[T any](rows [][]T) [][]T {
	if rows == nil {
		return nil
	}
	out := make([][]T, len(rows))
	for i, row := range rows {
		out[i] = slices.Clone(row)
	}
	return out
}
