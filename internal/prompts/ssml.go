package prompts

import (
	"encoding/xml"
	"strings"
)

// SSML accumulates speech and audio clips into one <speak> document.
type SSML struct {
	b strings.Builder
}

// Say appends escaped plain text.
func (s *SSML) Say(text string) *SSML {
	if text == "" {
		return s
	}
	if s.b.Len() > 0 {
		s.b.WriteByte(' ')
	}
	_ = xml.EscapeText(&s.b, []byte(text))
	return s
}

// Audio appends an <audio> clip.
func (s *SSML) Audio(src string) *SSML {
	if s.b.Len() > 0 {
		s.b.WriteByte(' ')
	}
	s.b.WriteString(`<audio src="`)
	_ = xml.EscapeText(&s.b, []byte(src))
	s.b.WriteString(`"/>`)
	return s
}

// Empty reports whether nothing has been added.
func (s *SSML) Empty() bool { return s.b.Len() == 0 }

// String wraps the content in <speak>.
func (s *SSML) String() string {
	return "<speak>" + s.b.String() + "</speak>"
}
