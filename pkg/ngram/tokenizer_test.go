package ngram

import (
	"reflect"
	"testing"
)

func TestTokenizerSplit(t *testing.T) {
	testCases := []struct {
		name       string
		separation string
		input      string
		expected   []string
	}{
		{"Simple sentence", " ", "the cat sat", []string{"the", "cat", "sat"}},
		{"Collapses whitespace", " ", "  the \t cat\n\nsat  ", []string{"the", "cat", "sat"}},
		{"Empty text", " ", "", nil},
		{"Only whitespace", " ", " \t\n ", nil},
		{"Custom separation", ",", "a,b,,c", []string{"a", "b", "c"}},
		{"Custom separation with spaces", ",", "a, b ,c", []string{"a", "b", "c"}},
		{"Empty separation falls back", "", "x y", []string{"x", "y"}},
		{"Punctuation stays attached", " ", "hello, world!", []string{"hello,", "world!"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tok := NewTokenizer(tc.separation)
			got := tok.Split(tc.input)
			if len(got) == 0 && len(tc.expected) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Split(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}

	if sep := NewTokenizer("").Separation(); sep != DefaultSeparation {
		t.Errorf("Separation() = %q, want %q", sep, DefaultSeparation)
	}
}
