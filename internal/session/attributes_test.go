package session

import (
	"context"
	"encoding/json"
	"testing"
)

func TestAttributeStore_SeedAndEcho(t *testing.T) {
	var attrs map[string]any
	if err := json.Unmarshal([]byte(`{"story":"1","index":2,"nested":{"a":1},"flag":true}`), &attrs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	ctx := context.Background()
	s := NewAttributeStore(attrs)

	st, err := Load(ctx, s, "ignored")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st != (State{Story: "1", Index: 2}) {
		t.Errorf("Load = %+v", st)
	}
	if _, ok, _ := s.Get(ctx, "", "nested"); ok {
		t.Error("nested attribute should be skipped")
	}
	if v, _, _ := s.Get(ctx, "", "flag"); v != "true" {
		t.Errorf("flag = %q", v)
	}

	if err := SaveIndex(ctx, s, "ignored", 3); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}
	out := s.Attributes()
	if out["index"] != 3 {
		t.Errorf("echoed index = %#v, want int 3", out["index"])
	}
	if out["story"] != "1" {
		t.Errorf("echoed story = %#v", out["story"])
	}
}

func TestAttributeStore_NilAttributes(t *testing.T) {
	s := NewAttributeStore(nil)
	st, err := Load(context.Background(), s, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.HasStory() {
		t.Errorf("Load = %+v, want empty", st)
	}
	if len(s.Attributes()) != 0 {
		t.Errorf("Attributes() = %v, want empty", s.Attributes())
	}
}
