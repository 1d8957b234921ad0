package prompts

import "testing"

func TestSSML(t *testing.T) {
	var s SSML
	if !s.Empty() {
		t.Fatal("new SSML should be empty")
	}
	s.Say("Tom & Jerry").Audio("https://example.com/a.mp3?x=1&y=2").Say("")

	want := `<speak>Tom &amp; Jerry <audio src="https://example.com/a.mp3?x=1&amp;y=2"/></speak>`
	if got := s.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSSML_AudioOnly(t *testing.T) {
	var s SSML
	s.Audio("https://example.com/0.mp3")
	if got := s.String(); got != `<speak><audio src="https://example.com/0.mp3"/></speak>` {
		t.Errorf("String() = %q", got)
	}
}
