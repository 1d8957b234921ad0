// Package catalog holds the fixed set of narratable stories.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"storyteller/internal/config"
)

// Delimiter is reserved by the playback token format and may not appear in
// story ids.
const Delimiter = "-"

var (
	ErrInvalidStoryID = errors.New("invalid story id")
	ErrEmptyStory     = errors.New("story has no segments")
)

// Story is one narratable story.
type Story struct {
	ID       string   `json:"id"`
	Title    string   `json:"title,omitempty"`
	Segments []string `json:"segments"`
}

// Catalog is immutable after New returns and safe for concurrent use.
type Catalog struct {
	stories map[string]Story
	ids     []string
}

// New validates stories and builds a catalog. Segment slices are copied.
func New(stories []Story) (*Catalog, error) {
	c := &Catalog{stories: make(map[string]Story, len(stories))}
	for _, s := range stories {
		if s.ID == "" || strings.Contains(s.ID, Delimiter) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStoryID, s.ID)
		}
		if len(s.Segments) == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptyStory, s.ID)
		}
		if _, dup := c.stories[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidStoryID, s.ID)
		}
		s.Segments = append([]string(nil), s.Segments...)
		c.stories[s.ID] = s
		c.ids = append(c.ids, s.ID)
	}
	sort.Strings(c.ids)
	return c, nil
}

// FromConfig builds a catalog from the inline catalog.stories section.
func FromConfig(cfg config.CatalogConfig) (*Catalog, error) {
	stories := make([]Story, 0, len(cfg.Stories))
	for id, sc := range cfg.Stories {
		stories = append(stories, Story{ID: id, Title: sc.Title, Segments: sc.Segments})
	}
	return New(stories)
}

// Lookup returns the segment URLs of storyID. The returned slice must not be
// modified.
func (c *Catalog) Lookup(storyID string) ([]string, bool) {
	s, ok := c.stories[storyID]
	if !ok {
		return nil, false
	}
	return s.Segments, true
}

// IDs returns the sorted story ids.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.ids...)
}

func (c *Catalog) Title(storyID string) string {
	if s, ok := c.stories[storyID]; ok && s.Title != "" {
		return s.Title
	}
	return storyID
}

// Story returns a copy of one story.
func (c *Catalog) Story(storyID string) (Story, bool) {
	s, ok := c.stories[storyID]
	if !ok {
		return Story{}, false
	}
	s.Segments = append([]string(nil), s.Segments...)
	return s, true
}

// Stories returns copies of every story ordered by id.
func (c *Catalog) Stories() []Story {
	out := make([]Story, 0, len(c.ids))
	for _, id := range c.ids {
		s, _ := c.Story(id)
		out = append(out, s)
	}
	return out
}

// Len reports the number of stories.
func (c *Catalog) Len() int { return len(c.ids) }
