package alexa

import (
	"errors"
	"fmt"
	"strings"

	"storyteller/internal/dispatch"
)

var ErrUnsupportedRequest = errors.New("unsupported request type")

// Intent names defined by the skill's interaction model.
const (
	IntentBeginStory    = "BeginStoryIntent"
	IntentContinueStory = "ContinueStoryIntent"
)

var intents = map[string]string{
	IntentBeginStory:          dispatch.IntentBeginStory,
	IntentContinueStory:       dispatch.IntentContinueStory,
	"AMAZON.FallbackIntent":   dispatch.IntentFallback,
	"AMAZON.NextIntent":       dispatch.IntentNext,
	"AMAZON.ResumeIntent":     dispatch.IntentResume,
	"AMAZON.PauseIntent":      dispatch.IntentPause,
	"AMAZON.CancelIntent":     dispatch.IntentCancel,
	"AMAZON.StopIntent":       dispatch.IntentStop,
	"AMAZON.HelpIntent":       dispatch.IntentHelp,
	"AMAZON.LoopOnIntent":     dispatch.IntentLoopOn,
	"AMAZON.LoopOffIntent":    dispatch.IntentLoopOff,
	"AMAZON.PreviousIntent":   dispatch.IntentPrevious,
	"AMAZON.RepeatIntent":     dispatch.IntentRepeat,
	"AMAZON.ShuffleOnIntent":  dispatch.IntentShuffleOn,
	"AMAZON.ShuffleOffIntent": dispatch.IntentShuffleOff,
	"AMAZON.StartOverIntent":  dispatch.IntentStartOver,
}

// Hardware and touch controls arrive as PlaybackController requests and are
// handled like the matching built-in intents.
var playbackCommands = map[string]string{
	"PlayCommandIssued":     dispatch.IntentResume,
	"PauseCommandIssued":    dispatch.IntentPause,
	"NextCommandIssued":     dispatch.IntentNext,
	"PreviousCommandIssued": dispatch.IntentPrevious,
}

// Normalize converts a request envelope into a dispatch event.
func Normalize(env *RequestEnvelope) (dispatch.Event, error) {
	evt := dispatch.Event{}
	if env.Session != nil {
		evt.SessionID = env.Session.SessionID
	}

	req := env.Request
	switch {
	case req.Type == TypeLaunch:
		evt.Type = dispatch.EventLaunch

	case req.Type == TypeIntent:
		if req.Intent == nil || req.Intent.Name == "" {
			return evt, fmt.Errorf("%w: intent request without intent", ErrUnsupportedRequest)
		}
		evt.Type = dispatch.EventIntent
		evt.Intent = intentName(req.Intent.Name)
		if slot, ok := req.Intent.Slots[StorySlotName]; ok {
			evt.Story = &dispatch.StorySlot{ResolvedID: slot.ResolvedID(), RawValue: slot.Value}
		}

	case strings.HasPrefix(req.Type, audioPlayerPrefix):
		evt.Type = dispatch.EventAudioPlayer
		evt.AudioEvent = strings.TrimPrefix(req.Type, audioPlayerPrefix)
		evt.Token = req.Token
		evt.OffsetMs = req.OffsetInMilliseconds
		if req.Error != nil {
			evt.Error = req.Error.Type + ": " + req.Error.Message
		}

	case strings.HasPrefix(req.Type, playbackControllerPrefix):
		name, ok := playbackCommands[strings.TrimPrefix(req.Type, playbackControllerPrefix)]
		if !ok {
			return evt, fmt.Errorf("%w: %s", ErrUnsupportedRequest, req.Type)
		}
		evt.Type = dispatch.EventIntent
		evt.Intent = name

	case req.Type == TypeSessionEnded:
		evt.Type = dispatch.EventSessionEnded
		if req.Error != nil {
			evt.Error = req.Error.Type + ": " + req.Error.Message
		}

	case req.Type == TypeExceptionEncountered:
		evt.Type = dispatch.EventSystemException
		if req.Error != nil {
			evt.Error = req.Error.Type + ": " + req.Error.Message
		}

	default:
		return evt, fmt.Errorf("%w: %q", ErrUnsupportedRequest, req.Type)
	}
	return evt, nil
}

// intentName maps a platform intent onto the dispatcher's names. Unknown
// intents pass through unchanged.
func intentName(name string) string {
	if n, ok := intents[name]; ok {
		return n
	}
	return name
}

// Silent reports whether the platform forbids speech and session control in
// the response to this request.
func Silent(reqType string) bool {
	return strings.HasPrefix(reqType, audioPlayerPrefix) ||
		strings.HasPrefix(reqType, playbackControllerPrefix) ||
		reqType == TypeSessionEnded ||
		reqType == TypeExceptionEncountered
}
