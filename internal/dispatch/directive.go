package dispatch

// PlayBehavior tells the audio player how a stream relates to its queue.
type PlayBehavior string

const (
	ReplaceAll PlayBehavior = "REPLACE_ALL"
	Enqueue    PlayBehavior = "ENQUEUE"
)

// AudioDirectiveType is the audio instruction sent with a response.
type AudioDirectiveType string

const (
	AudioPlay       AudioDirectiveType = "Play"
	AudioStop       AudioDirectiveType = "Stop"
	AudioClearQueue AudioDirectiveType = "ClearQueue"
)

// Stream identifies one audio segment for the player.
type Stream struct {
	URL                   string
	Token                 string
	OffsetMs              int64
	ExpectedPreviousToken string
}

// AudioDirective is an instruction for the platform's audio player.
type AudioDirective struct {
	Type     AudioDirectiveType
	Behavior PlayBehavior
	// Stream is set for AudioPlay.
	Stream Stream
}

// Response is what the platform should do for one event.
type Response struct {
	// Speech is an SSML document, empty for silent responses.
	Speech string
	// EndSession is nil when the response must not mention the session,
	// as for audio player callbacks.
	EndSession *bool
	Audio      *AudioDirective
	// Outcome labels the result for logs, metrics and observers.
	Outcome string
}

func endSession(v bool) *bool { return &v }
