package session

import (
	"context"
	"encoding/json"
	"strconv"
)

// AttributeStore is backed by the session attributes the platform sends with
// every request and expects back in the response. It serves exactly one
// request, so the session id argument is ignored.
type AttributeStore struct {
	values map[string]string
}

// NewAttributeStore seeds the store from decoded request attributes. Numbers
// and booleans are kept in their JSON text form; nested values are skipped.
func NewAttributeStore(attrs map[string]any) *AttributeStore {
	s := &AttributeStore{values: make(map[string]string, len(attrs))}
	for k, v := range attrs {
		switch tv := v.(type) {
		case string:
			s.values[k] = tv
		case float64:
			s.values[k] = strconv.FormatFloat(tv, 'f', -1, 64)
		case json.Number:
			s.values[k] = tv.String()
		case bool:
			s.values[k] = strconv.FormatBool(tv)
		}
	}
	return s
}

func (s *AttributeStore) Get(_ context.Context, _ string, key string) (string, bool, error) {
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *AttributeStore) Set(_ context.Context, _ string, key, value string) error {
	s.values[key] = value
	return nil
}

// Attributes returns the attributes to echo back to the platform. The index
// is emitted as a number.
func (s *AttributeStore) Attributes() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		if k == KeyIndex {
			if n, err := strconv.Atoi(v); err == nil {
				out[k] = n
				continue
			}
		}
		out[k] = v
	}
	return out
}
