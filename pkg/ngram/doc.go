/*
Package ngram provides small, in-memory n-gram chains that learn word windows
from example sentences and generate new, structurally similar sentences by
walking those windows at random.

Two designs are offered. Chain stores overlapping windows of literal strings
bracketed by sentinel start and end tokens. IndexedChain interns every word
into a dictionary and stores whole sentences as dictionary indices, which
allows generation to start mid-sentence and to walk backward.

Neither type is safe for concurrent use. Both can be captured as a plain
snapshot record and encoded to JSON for the caller to persist.
*/
package ngram
