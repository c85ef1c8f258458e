package analyzer

import (
	"reflect"
	"testing"
)

func TestTokenizer_Tokenize(t *testing.T) {
	tok := NewTokenizer(2)

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "lowercases and drops stopwords",
			input:    "The Hobbit and the Ring",
			expected: []string{"hobbit", "ring"},
		},
		{
			name:     "splits on punctuation",
			input:    "sci-fi, drama; 1999",
			expected: []string{"sci", "fi", "drama", "1999"},
		},
		{
			name:     "drops short tokens",
			input:    "a b cd",
			expected: []string{"cd"},
		},
		{
			name:     "keeps unicode letters",
			input:    "Amélie Poulain",
			expected: []string{"amélie", "poulain"},
		},
		{
			name:     "empty",
			input:    "",
			expected: []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tok.Tokenize(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Tokenize(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestTokenizer_MinLenFloor(t *testing.T) {
	tok := NewTokenizer(0)
	got := tok.Tokenize("x y")
	if len(got) != 2 {
		t.Errorf("expected 2 tokens with minLen floor of 1, got %v", got)
	}
}
