// Package token encodes a playback position into the opaque string handed to
// the platform's audio player, so lifecycle callbacks can name the segment
// they refer to without a session lookup.
//
// The wire format is "<story>-<index>".
package token

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const delimiter = "-"

// ErrMalformed is returned by Decode for tokens that are not "<story>-<index>".
var ErrMalformed = errors.New("malformed playback token")

// Encode joins story and index. story must not contain the delimiter and
// index must be non-negative for the result to decode.
func Encode(story string, index int) string {
	return story + delimiter + strconv.Itoa(index)
}

// Decode splits a token produced by Encode.
func Decode(tok string) (story string, index int, err error) {
	parts := strings.Split(tok, delimiter)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("%w: %q: want 2 fields, got %d", ErrMalformed, tok, len(parts))
	}
	story, raw := parts[0], parts[1]
	if story == "" {
		return "", 0, fmt.Errorf("%w: %q: empty story", ErrMalformed, tok)
	}
	if !isDigits(raw) {
		return "", 0, fmt.Errorf("%w: %q: index %q is not a non-negative integer", ErrMalformed, tok, raw)
	}
	index, err = strconv.Atoi(raw)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q: %v", ErrMalformed, tok, err)
	}
	return story, index, nil
}

// isDigits rejects signs, spaces and the empty string, which Atoi would
// otherwise accept or which would break the round trip.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
