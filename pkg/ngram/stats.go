package ngram

// ChainStats holds aggregated statistics for a Chain.
type ChainStats struct {
	NGrams         int // The window width
	Windows        int // The number of stored windows, duplicates included
	StartingTokens int // The number of distinct tokens that directly follow the start padding
	DistinctTokens int // The number of distinct non-sentinel tokens
}

// IndexedStats holds aggregated statistics for an IndexedChain.
type IndexedStats struct {
	Sentences      int // The number of learned sentences
	DictionarySize int // The number of distinct words
	TotalTokens    int // The sum of all sentence lengths
	LongestLength  int // The length of the longest sentence
}

// Stats returns a snapshot of statistics for the chain.
func (c *Chain) Stats() ChainStats {
	starters := make(map[string]struct{})
	tokens := make(map[string]struct{})
	for _, window := range c.corpus {
		for i, token := range window {
			if token == c.start || token == c.end {
				continue
			}
			tokens[token] = struct{}{}
			if i == len(window)-1 && window[0] == c.start && i > 0 && window[i-1] == c.start {
				starters[token] = struct{}{}
			}
		}
	}
	return ChainStats{
		NGrams:         c.grams,
		Windows:        len(c.corpus),
		StartingTokens: len(starters),
		DistinctTokens: len(tokens),
	}
}

// Stats returns a snapshot of statistics for the chain.
func (c *IndexedChain) Stats() IndexedStats {
	stats := IndexedStats{
		Sentences:      len(c.corpus),
		DictionarySize: len(c.dictionary),
	}
	for _, sentence := range c.corpus {
		stats.TotalTokens += len(sentence)
		stats.LongestLength = max(stats.LongestLength, len(sentence))
	}
	return stats
}
