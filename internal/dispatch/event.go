// Package dispatch maps normalised platform events onto story progression
// and builds the directive the platform should execute in response.
package dispatch

// EventType is the kind of inbound platform request.
type EventType string

const (
	EventLaunch          EventType = "Launch"
	EventIntent          EventType = "Intent"
	EventAudioPlayer     EventType = "AudioPlayer"
	EventSessionEnded    EventType = "SessionEnded"
	EventSystemException EventType = "SystemException"
)

// Intent names, independent of the platform's own naming.
const (
	IntentBeginStory    = "BeginStory"
	IntentContinueStory = "ContinueStory"
	IntentFallback      = "Fallback"
	IntentNext          = "Next"
	IntentResume        = "Resume"
	IntentPause         = "Pause"
	IntentCancel        = "Cancel"
	IntentStop          = "Stop"
	IntentHelp          = "Help"
	IntentLoopOn        = "LoopOn"
	IntentLoopOff       = "LoopOff"
	IntentPrevious      = "Previous"
	IntentRepeat        = "Repeat"
	IntentShuffleOn     = "ShuffleOn"
	IntentShuffleOff    = "ShuffleOff"
	IntentStartOver     = "StartOver"
)

// Audio player lifecycle callbacks.
const (
	AudioPlaybackStarted        = "PlaybackStarted"
	AudioPlaybackFinished       = "PlaybackFinished"
	AudioPlaybackStopped        = "PlaybackStopped"
	AudioPlaybackNearlyFinished = "PlaybackNearlyFinished"
	AudioPlaybackFailed         = "PlaybackFailed"
)

// StorySlot is the platform's resolution of the Story slot.
type StorySlot struct {
	// ResolvedID is the catalog id the platform matched, or empty.
	ResolvedID string
	// RawValue is what the user said.
	RawValue string
}

// Empty reports whether the user named no story at all.
func (s *StorySlot) Empty() bool {
	return s == nil || (s.ResolvedID == "" && s.RawValue == "")
}

// Event is one normalised platform request.
type Event struct {
	Type      EventType
	SessionID string
	// Intent is set for EventIntent.
	Intent string
	Story  *StorySlot
	// AudioEvent, Token and OffsetMs are set for EventAudioPlayer.
	AudioEvent string
	Token      string
	OffsetMs   int64
	// Error describes playback failures and system exceptions.
	Error string
}

// Name is the label used in logs and metrics.
func (e Event) Name() string {
	switch e.Type {
	case EventIntent:
		return e.Intent
	case EventAudioPlayer:
		return "AudioPlayer." + e.AudioEvent
	default:
		return string(e.Type)
	}
}
