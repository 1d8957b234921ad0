// Package session maps the typed playback state onto the key/value session
// storage offered by the voice platform.
package session

import (
	"context"
	"fmt"
	"strconv"

	"storyteller/internal/interfaces"
)

// Store keys. These names are part of the stored format.
const (
	KeyStory = "story"
	KeyIndex = "index"
)

// State is the playback position of one conversation.
type State struct {
	// Story is empty when no story has been chosen yet.
	Story string
	// Index is the next segment to play.
	Index int
}

// HasStory reports whether a story has been chosen.
func (s State) HasStory() bool { return s.Story != "" }

// Load reads the state of sessionID. Missing keys yield the zero State; an
// unparsable or negative index reads as 0.
func Load(ctx context.Context, store interfaces.SessionStore, sessionID string) (State, error) {
	var st State

	story, ok, err := store.Get(ctx, sessionID, KeyStory)
	if err != nil {
		return State{}, fmt.Errorf("load %s: %w", KeyStory, err)
	}
	if ok {
		st.Story = story
	}

	raw, ok, err := store.Get(ctx, sessionID, KeyIndex)
	if err != nil {
		return State{}, fmt.Errorf("load %s: %w", KeyIndex, err)
	}
	if ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			st.Index = n
		}
	}
	return st, nil
}

// Save writes both keys of st.
func Save(ctx context.Context, store interfaces.SessionStore, sessionID string, st State) error {
	if err := store.Set(ctx, sessionID, KeyStory, st.Story); err != nil {
		return fmt.Errorf("save %s: %w", KeyStory, err)
	}
	return SaveIndex(ctx, store, sessionID, st.Index)
}

// SaveIndex writes only the index key.
func SaveIndex(ctx context.Context, store interfaces.SessionStore, sessionID string, index int) error {
	if err := store.Set(ctx, sessionID, KeyIndex, strconv.Itoa(index)); err != nil {
		return fmt.Errorf("save %s: %w", KeyIndex, err)
	}
	return nil
}
