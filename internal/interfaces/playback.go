package interfaces

// PlaybackEvent is a summary of one dispatched platform event, published
// to observers such as the websocket feed.
type PlaybackEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Token     string `json:"token,omitempty"`
	OffsetMs  int64  `json:"offset_ms,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// PlaybackObserver receives playback events. Publish must not block.
type PlaybackObserver interface {
	Publish(evt PlaybackEvent)
}
