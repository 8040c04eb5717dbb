package ngram

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestChainExportImportRoundTrip(t *testing.T) {
	c := setupChain(t, []Option{WithGrams(2), WithSentinels("<s>", "</s>")}, "one fish two fish", "red fish blue fish")

	var buf bytes.Buffer
	if err := c.Export(&buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	imported, err := ImportChain(&buf)
	if err != nil {
		t.Fatalf("ImportChain() failed: %v", err)
	}
	if !reflect.DeepEqual(imported.Snapshot(), c.Snapshot()) {
		t.Errorf("imported snapshot = %+v, want %+v", imported.Snapshot(), c.Snapshot())
	}

	// The copy must not share storage with the original.
	imported.Learn("green fish")
	if imported.Len() == c.Len() {
		t.Error("learning into the imported chain changed the original")
	}

	output, err := imported.Generate()
	if err != nil {
		t.Fatalf("Generate() from imported chain failed: %v", err)
	}
	if !strings.HasSuffix(output, "fish") {
		t.Errorf("Generate() from imported chain got = %q, want a sentence ending in fish", output)
	}
}

func TestChainSnapshotIsDeepCopy(t *testing.T) {
	c := setupChain(t, nil, "hi")

	snap := c.Snapshot()
	snap.Corpus[1][2] = "changed"
	if c.corpus[1][2] != "hi" {
		t.Error("mutating a snapshot changed the chain")
	}

	restored, err := RestoreChain(snap)
	if err != nil {
		t.Fatalf("RestoreChain() failed: %v", err)
	}
	snap.Corpus[1][2] = "again"
	if restored.corpus[1][2] != "changed" {
		t.Error("mutating a snapshot changed the restored chain")
	}
}

func TestChainSnapshotFormat(t *testing.T) {
	data := `{"nGrams":2,"start":"S","end":"E","separation":" ","corpus":[["S","S"],["S","hi"],["hi","E"]]}`
	c, err := ParseChain([]byte(data))
	if err != nil {
		t.Fatalf("ParseChain() failed: %v", err)
	}
	if c.Grams() != 2 || c.Len() != 3 {
		t.Fatalf("parsed chain has grams=%d len=%d, want 2 and 3", c.Grams(), c.Len())
	}
	output, err := c.Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if output != "hi" {
		t.Errorf("Generate() got = %q, want %q", output, "hi")
	}
}

func TestRestoreChainEmptySentinels(t *testing.T) {
	c, err := RestoreChain(ChainSnapshot{
		NGrams: 2,
		Corpus: [][]string{{DefaultStart, DefaultStart}, {DefaultStart, "hi"}, {"hi", DefaultEnd}},
	})
	if err != nil {
		t.Fatalf("RestoreChain() failed: %v", err)
	}
	snap := c.Snapshot()
	if snap.Start != DefaultStart || snap.End != DefaultEnd {
		t.Errorf("restored sentinels = %q, %q, want the defaults", snap.Start, snap.End)
	}

	output, err := c.Generate()
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}
	if output != "hi" {
		t.Errorf("Generate() got = %q, want %q", output, "hi")
	}
}

func TestIndexedExportImportRoundTrip(t *testing.T) {
	c := NewIndexedChain(WithDefaultConfig(IndexedConfig{From: "test", Grams: 3, Backward: true}))
	for _, s := range []string{"hi everyone i am a test OwO", "i should be generated from UwU", ""} {
		if err := c.Learn(s); err != nil {
			t.Fatalf("setup: Learn() failed: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := c.Export(&buf); err != nil {
		t.Fatalf("Export() failed: %v", err)
	}

	imported, err := ImportIndexedChain(&buf)
	if err != nil {
		t.Fatalf("ImportIndexedChain() failed: %v", err)
	}
	if !reflect.DeepEqual(imported.Snapshot(), c.Snapshot()) {
		t.Errorf("imported snapshot = %+v, want %+v", imported.Snapshot(), c.Snapshot())
	}

	if err = imported.Learn("brand new words"); err != nil {
		t.Fatalf("Learn() failed: %v", err)
	}
	if c.Contains("brand") || c.Len() != 3 {
		t.Error("learning into the imported chain changed the original")
	}

	snap := c.Snapshot()
	snap.Dictionary[0] = "changed"
	snap.Corpus[0][0] = 5
	if w, _ := c.Word(0); w != "hi" || c.corpus[0][0] != 0 {
		t.Error("mutating a snapshot changed the chain")
	}
}

func TestParseIndexedChain(t *testing.T) {
	t.Run("Empty base gives defaults", func(t *testing.T) {
		c, err := ParseIndexedChain(nil)
		if err != nil {
			t.Fatalf("ParseIndexedChain(nil) failed: %v", err)
		}
		if c.Len() != 0 || c.Config() != DefaultIndexedConfig() {
			t.Errorf("got len=%d config=%+v, want an empty default chain", c.Len(), c.Config())
		}
	})

	t.Run("Record fields", func(t *testing.T) {
		data := `{"corpus":[[0,1,2]],"dictionary":["a","b","c"],"config":{"from":"b","grams":2,"backward":false}}`
		c, err := ParseIndexedChain([]byte(data))
		if err != nil {
			t.Fatalf("ParseIndexedChain() failed: %v", err)
		}
		output, err := c.Generate()
		if err != nil {
			t.Fatalf("Generate() failed: %v", err)
		}
		if output != "b c" {
			t.Errorf("Generate() got = %q, want %q", output, "b c")
		}
	})

	t.Run("Missing grams falls back", func(t *testing.T) {
		c, err := ParseIndexedChain([]byte(`{"corpus":[],"dictionary":[],"config":{"from":""}}`))
		if err != nil {
			t.Fatalf("ParseIndexedChain() failed: %v", err)
		}
		if c.Config().Grams != DefaultIndexedGrams {
			t.Errorf("Config().Grams = %d, want %d", c.Config().Grams, DefaultIndexedGrams)
		}
	})
}

func TestSnapshotErrors(t *testing.T) {
	testCases := []struct {
		name        string
		load        func() error
		expectError error
	}{
		{
			name: "Chain text is not JSON",
			load: func() error {
				_, err := ParseChain([]byte("not json"))
				return err
			},
			expectError: ErrUnparseableSnapshot,
		},
		{
			name: "Indexed text is not JSON",
			load: func() error {
				_, err := ParseIndexedChain([]byte("{corpus:"))
				return err
			},
			expectError: ErrUnparseableSnapshot,
		},
		{
			name: "Indexed field has the wrong type",
			load: func() error {
				_, err := ParseIndexedChain([]byte(`{"corpus":"nope"}`))
				return err
			},
			expectError: ErrUnparseableSnapshot,
		},
		{
			name: "Window length differs from nGrams",
			load: func() error {
				_, err := RestoreChain(ChainSnapshot{NGrams: 3, Corpus: [][]string{{"a", "b"}}})
				return err
			},
			expectError: ErrInvalidSnapshot,
		},
		{
			name: "Index outside the dictionary",
			load: func() error {
				_, err := RestoreIndexedChain(IndexedSnapshot{Corpus: [][]int{{0, 3}}, Dictionary: []string{"a"}})
				return err
			},
			expectError: ErrInvalidSnapshot,
		},
		{
			name: "Duplicate dictionary word",
			load: func() error {
				_, err := RestoreIndexedChain(IndexedSnapshot{Dictionary: []string{"a", "a"}})
				return err
			},
			expectError: ErrInvalidSnapshot,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.load(); !errors.Is(err, tc.expectError) {
				t.Errorf("expected error %v, got %v", tc.expectError, err)
			}
		})
	}
}
