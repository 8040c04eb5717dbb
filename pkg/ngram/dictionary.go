package ngram

import "slices"

// Contains reports whether word was a token of some learned sentence.
func (c *IndexedChain) Contains(word string) bool {
	_, ok := c.lookup[word]
	return ok
}

// Index looks up a word in the dictionary and returns its position.
func (c *IndexedChain) Index(word string) (int, bool) {
	idx, ok := c.lookup[word]
	return idx, ok
}

// Word looks up a dictionary position and returns the word stored there.
func (c *IndexedChain) Word(idx int) (string, bool) {
	if idx < 0 || idx >= len(c.dictionary) {
		return "", false
	}
	return c.dictionary[idx], true
}

// Dictionary returns a copy of the dictionary in first-seen order.
func (c *IndexedChain) Dictionary() []string {
	return slices.Clone(c.dictionary)
}
