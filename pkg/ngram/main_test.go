package ngram

import (
	"go/build"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// newTestRand returns a seeded source so walks are reproducible within a test run.
func newTestRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 77))
}

// setupIndexed creates an IndexedChain that has learned the given sentences.
func setupIndexed(t *testing.T, sentences ...string) *IndexedChain {
	t.Helper()
	c := NewIndexedChain(WithRand(newTestRand()))
	for _, s := range sentences {
		if err := c.Learn(s); err != nil {
			t.Fatalf("setup: Learn(%q) failed: %v", s, err)
		}
	}
	return c
}

// setupChain creates a Chain that has learned the given sentences.
func setupChain(t *testing.T, opts []Option, sentences ...string) *Chain {
	t.Helper()
	c := NewChain(append([]Option{WithRand(newTestRand())}, opts...)...)
	for _, s := range sentences {
		c.Learn(s)
	}
	return c
}

var (
	benchmarkLines []string
	linesOnce      sync.Once
)

// benchmarkCorpus reads Go source files and returns their non-empty lines.
func benchmarkCorpus() []string {
	linesOnce.Do(func() {
		goRoot := build.Default.GOROOT
		filesToRead := []string{
			filepath.Join(goRoot, "src/net/http/server.go"),
			filepath.Join(goRoot, "src/go/parser/parser.go"),
			filepath.Join(goRoot, "src/encoding/json/encode.go"),
		}

		for _, file := range filesToRead {
			content, err := os.ReadFile(file)
			if err != nil {
				benchmarkLines = []string{"this is a fallback corpus for benchmarking", "it is not very long but will prevent a crash"}
				return
			}
			for _, line := range strings.Split(string(content), "\n") {
				if strings.TrimSpace(line) != "" {
					benchmarkLines = append(benchmarkLines, line)
				}
			}
		}
	})
	return benchmarkLines
}
