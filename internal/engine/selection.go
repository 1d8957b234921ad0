package engine

import "strconv"

// Selection is the story a user asked for: either a specific id or "any
// story".
type Selection struct {
	id     string
	random bool
}

// Requested selects a specific story id.
func Requested(id string) Selection { return Selection{id: id} }

// Random selects a story uniformly from the catalog.
func Random() Selection { return Selection{random: true} }

func (s Selection) IsRandom() bool { return s.random }

// ID is empty for random selections.
func (s Selection) ID() string { return s.id }

func (s Selection) String() string {
	if s.random {
		return "random"
	}
	return s.id
}

// ParseSelection interprets a slot-resolved story id. The interaction model
// resolves "any story" style utterances to a negative number, so any integer
// below zero means Random.
func ParseSelection(resolvedID string) Selection {
	if n, err := strconv.Atoi(resolvedID); err == nil && n < 0 {
		return Random()
	}
	return Requested(resolvedID)
}
