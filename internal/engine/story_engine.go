package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"storyteller/internal/interfaces"
	"storyteller/internal/session"
	"storyteller/internal/token"
)

// ErrEmptyCatalog is returned when a random story is requested from a
// catalog without stories.
var ErrEmptyCatalog = errors.New("catalog has no stories")

// Kind is the state the engine reached for a session.
type Kind int

const (
	NoStoryChosen Kind = iota
	InProgress
	Completed
	UnknownStory
)

func (k Kind) String() string {
	switch k {
	case NoStoryChosen:
		return "no_story_chosen"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	case UnknownStory:
		return "unknown_story"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the result of one progression step.
type Outcome struct {
	Kind  Kind
	Story string
	// Index of the emitted segment. Only meaningful for InProgress.
	Index int
	URL   string
	Token string
	// ExpectedPreviousToken is set for replays so the platform can check
	// queue ordering.
	ExpectedPreviousToken string
}

// StoryEngine advances per-session playback through the catalog. It holds
// no state of its own; every position lives in the session store.
type StoryEngine struct {
	catalog interfaces.StoryCatalog
	store   interfaces.SessionStore
	intn    func(n int) int
}

// Option configures a StoryEngine.
type Option func(*StoryEngine)

// WithRandom replaces the source used for random story selection. intn must
// return a value in [0, n).
func WithRandom(intn func(n int) int) Option {
	return func(e *StoryEngine) { e.intn = intn }
}

// NewStoryEngine creates an engine over catalog and store.
func NewStoryEngine(catalog interfaces.StoryCatalog, store interfaces.SessionStore, opts ...Option) *StoryEngine {
	e := &StoryEngine{
		catalog: catalog,
		store:   store,
		intn:    rand.IntN,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// WithStore returns a copy of the engine that reads and writes store.
func (e *StoryEngine) WithStore(store interfaces.SessionStore) *StoryEngine {
	cp := *e
	cp.store = store
	return &cp
}

// SelectStory resets the session to the start of the selected story and
// returns its id. A requested id is not checked against the catalog here;
// Advance reports unknown stories.
func (e *StoryEngine) SelectStory(ctx context.Context, sessionID string, sel Selection) (string, error) {
	story := sel.ID()
	if sel.IsRandom() {
		ids := e.catalog.IDs()
		if len(ids) == 0 {
			return "", ErrEmptyCatalog
		}
		story = ids[e.intn(len(ids))]
	}

	if err := session.Save(ctx, e.store, sessionID, session.State{Story: story, Index: 0}); err != nil {
		return "", fmt.Errorf("select story %q: %w", story, err)
	}
	return story, nil
}

// Advance emits the next segment of the session's story and moves the
// cursor past it. Terminal and error states leave the session untouched.
func (e *StoryEngine) Advance(ctx context.Context, sessionID string) (Outcome, error) {
	st, err := session.Load(ctx, e.store, sessionID)
	if err != nil {
		return Outcome{}, fmt.Errorf("advance: %w", err)
	}
	if !st.HasStory() {
		return Outcome{Kind: NoStoryChosen}, nil
	}

	segments, ok := e.catalog.Lookup(st.Story)
	if !ok {
		return Outcome{Kind: UnknownStory, Story: st.Story}, nil
	}
	if st.Index >= len(segments) {
		return Outcome{Kind: Completed, Story: st.Story}, nil
	}

	out := Outcome{
		Kind:  InProgress,
		Story: st.Story,
		Index: st.Index,
		URL:   segments[st.Index],
		Token: token.Encode(st.Story, st.Index),
	}
	if err := session.SaveIndex(ctx, e.store, sessionID, st.Index+1); err != nil {
		return Outcome{}, fmt.Errorf("advance: %w", err)
	}
	return out, nil
}

// Replay resolves the segment a playback token points at, so it can be
// enqueued again behind itself. The session is not read or written; the
// token alone identifies the position.
func (e *StoryEngine) Replay(tok string) (Outcome, error) {
	story, index, err := token.Decode(tok)
	if err != nil {
		return Outcome{}, err
	}

	segments, ok := e.catalog.Lookup(story)
	if !ok {
		return Outcome{Kind: UnknownStory, Story: story}, nil
	}
	if index >= len(segments) {
		return Outcome{Kind: Completed, Story: story}, nil
	}

	return Outcome{
		Kind:                  InProgress,
		Story:                 story,
		Index:                 index,
		URL:                   segments[index],
		Token:                 token.Encode(story, index),
		ExpectedPreviousToken: tok,
	}, nil
}

// GetStoryState returns the stored position of a session.
func (e *StoryEngine) GetStoryState(ctx context.Context, sessionID string) (session.State, error) {
	return session.Load(ctx, e.store, sessionID)
}
