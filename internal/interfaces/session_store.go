package interfaces

import "context"

// SessionStore is the per-session key/value storage provided by the voice
// platform's session mechanism (or a backend standing in for it).
type SessionStore interface {
	// Get returns the value stored under key for the session. ok is false
	// when the key has never been set.
	Get(ctx context.Context, sessionID, key string) (value string, ok bool, err error)

	// Set stores value under key for the session.
	Set(ctx context.Context, sessionID, key, value string) error
}
