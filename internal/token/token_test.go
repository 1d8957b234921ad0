package token

import (
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	if got := Encode("1", 0); got != "1-0" {
		t.Errorf("Encode(1, 0) = %q, want 1-0", got)
	}
	if got := Encode("wild", 12); got != "wild-12" {
		t.Errorf("Encode(wild, 12) = %q, want wild-12", got)
	}
}

func TestRoundTrip(t *testing.T) {
	stories := []string{"1", "2", "42", "wild", "Story7"}
	for _, story := range stories {
		for _, index := range []int{0, 1, 2, 9, 10, 99, 1000, 1 << 30} {
			tok := Encode(story, index)
			gotStory, gotIndex, err := Decode(tok)
			if err != nil {
				t.Fatalf("Decode(%q): %v", tok, err)
			}
			if gotStory != story || gotIndex != index {
				t.Errorf("Decode(Encode(%q, %d)) = (%q, %d)", story, index, gotStory, gotIndex)
			}
		}
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		tok  string
	}{
		{"missing index", "1"},
		{"empty", ""},
		{"too many fields", "1-2-3"},
		{"empty story", "-3"},
		{"empty index", "1-"},
		{"negative index", "1--1"},
		{"signed index", "1-+1"},
		{"non numeric index", "1-abc"},
		{"space in index", "1- 2"},
		{"overflow", "1-99999999999999999999999"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.tok)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformed", tt.tok, err)
			}
		})
	}
}
