// Package alexa translates the Alexa skill JSON envelope to and from the
// platform-neutral dispatch types.
package alexa

// Request types.
const (
	TypeLaunch               = "LaunchRequest"
	TypeIntent               = "IntentRequest"
	TypeSessionEnded         = "SessionEndedRequest"
	TypeExceptionEncountered = "System.ExceptionEncountered"

	audioPlayerPrefix        = "AudioPlayer."
	playbackControllerPrefix = "PlaybackController."
)

// StorySlotName is the slot BeginStoryIntent carries the story in.
const StorySlotName = "Story"

// StatusMatch is the entity resolution status of a successful match.
const StatusMatch = "ER_SUCCESS_MATCH"

type RequestEnvelope struct {
	Version string   `json:"version"`
	Session *Session `json:"session,omitempty"`
	Context Context  `json:"context"`
	Request Request  `json:"request"`
}

type Session struct {
	New         bool           `json:"new"`
	SessionID   string         `json:"sessionId"`
	Application Application    `json:"application"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	User        User           `json:"user"`
}

type Application struct {
	ApplicationID string `json:"applicationId"`
}

type User struct {
	UserID string `json:"userId"`
}

type Context struct {
	System      System            `json:"System"`
	AudioPlayer *AudioPlayerState `json:"AudioPlayer,omitempty"`
}

type System struct {
	Application Application `json:"application"`
	User        User        `json:"user"`
}

type AudioPlayerState struct {
	Token                string `json:"token,omitempty"`
	OffsetInMilliseconds int64  `json:"offsetInMilliseconds"`
	PlayerActivity       string `json:"playerActivity"`
}

type Request struct {
	Type                 string        `json:"type"`
	RequestID            string        `json:"requestId"`
	Timestamp            string        `json:"timestamp"`
	Locale               string        `json:"locale,omitempty"`
	Intent               *Intent       `json:"intent,omitempty"`
	Token                string        `json:"token,omitempty"`
	OffsetInMilliseconds int64         `json:"offsetInMilliseconds,omitempty"`
	Reason               string        `json:"reason,omitempty"`
	Error                *RequestError `json:"error,omitempty"`
}

type RequestError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Intent struct {
	Name  string          `json:"name"`
	Slots map[string]Slot `json:"slots,omitempty"`
}

type Slot struct {
	Name        string       `json:"name"`
	Value       string       `json:"value,omitempty"`
	Resolutions *Resolutions `json:"resolutions,omitempty"`
}

type Resolutions struct {
	PerAuthority []Resolution `json:"resolutionsPerAuthority"`
}

type Resolution struct {
	Authority string            `json:"authority"`
	Status    ResolutionStatus  `json:"status"`
	Values    []ResolutionValue `json:"values,omitempty"`
}

type ResolutionStatus struct {
	Code string `json:"code"`
}

type ResolutionValue struct {
	Value ResolvedEntity `json:"value"`
}

type ResolvedEntity struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// ResolvedID returns the id of the first successful entity resolution, or
// "" when the platform matched nothing.
func (s Slot) ResolvedID() string {
	if s.Resolutions == nil {
		return ""
	}
	for _, r := range s.Resolutions.PerAuthority {
		if r.Status.Code == StatusMatch && len(r.Values) > 0 {
			return r.Values[0].Value.ID
		}
	}
	return ""
}

// ApplicationID returns the skill id the request was sent to.
func (e *RequestEnvelope) ApplicationID() string {
	if e.Session != nil && e.Session.Application.ApplicationID != "" {
		return e.Session.Application.ApplicationID
	}
	return e.Context.System.Application.ApplicationID
}

// Attributes returns the session attributes, or nil outside a session.
func (e *RequestEnvelope) Attributes() map[string]any {
	if e.Session == nil {
		return nil
	}
	return e.Session.Attributes
}

type ResponseEnvelope struct {
	Version           string         `json:"version"`
	SessionAttributes map[string]any `json:"sessionAttributes,omitempty"`
	Response          ResponseBody   `json:"response"`
}

type ResponseBody struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	ShouldEndSession *bool         `json:"shouldEndSession,omitempty"`
	Directives       []Directive   `json:"directives,omitempty"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	SSML string `json:"ssml"`
}

type Directive struct {
	Type          string     `json:"type"`
	PlayBehavior  string     `json:"playBehavior,omitempty"`
	ClearBehavior string     `json:"clearBehavior,omitempty"`
	AudioItem     *AudioItem `json:"audioItem,omitempty"`
}

type AudioItem struct {
	Stream AudioStream `json:"stream"`
}

type AudioStream struct {
	URL                   string `json:"url"`
	Token                 string `json:"token"`
	ExpectedPreviousToken string `json:"expectedPreviousToken,omitempty"`
	OffsetInMilliseconds  int64  `json:"offsetInMilliseconds"`
}
