package alexa

import (
	"encoding/json"
	"io"

	"storyteller/internal/dispatch"
)

const (
	Version          = "1.0"
	speechTypeSSML   = "SSML"
	clearBehaviorAll = "CLEAR_ALL"
)

// Render builds the response envelope for resp. Responses to silent
// request types drop speech and shouldEndSession; playback controller
// responses keep their audio directives.
func Render(reqType string, resp dispatch.Response, attrs map[string]any) ResponseEnvelope {
	env := ResponseEnvelope{Version: Version}
	silent := Silent(reqType)

	if !silent {
		env.SessionAttributes = attrs
		if resp.Speech != "" {
			env.Response.OutputSpeech = &OutputSpeech{Type: speechTypeSSML, SSML: resp.Speech}
		}
		env.Response.ShouldEndSession = resp.EndSession
	}

	if resp.Audio != nil && reqType != TypeSessionEnded && reqType != TypeExceptionEncountered {
		env.Response.Directives = []Directive{renderDirective(resp.Audio)}
	}
	return env
}

func renderDirective(a *dispatch.AudioDirective) Directive {
	d := Directive{Type: "AudioPlayer." + string(a.Type)}
	switch a.Type {
	case dispatch.AudioPlay:
		d.PlayBehavior = string(a.Behavior)
		d.AudioItem = &AudioItem{Stream: AudioStream{
			URL:                   a.Stream.URL,
			Token:                 a.Stream.Token,
			ExpectedPreviousToken: a.Stream.ExpectedPreviousToken,
			OffsetInMilliseconds:  a.Stream.OffsetMs,
		}}
	case dispatch.AudioClearQueue:
		d.ClearBehavior = clearBehaviorAll
	}
	return d
}

// Encode writes env as JSON without HTML escaping, so SSML stays readable.
func Encode(w io.Writer, env ResponseEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(env)
}
