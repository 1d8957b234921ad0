package session

import (
	"context"
	"errors"
	"testing"
)

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, string, string) (string, bool, error) {
	return "", false, f.err
}

func (f failingStore) Set(context.Context, string, string, string) error { return f.err }

func TestLoad_Empty(t *testing.T) {
	st, err := Load(context.Background(), NewMemoryStore(0), "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st.HasStory() || st.Index != 0 {
		t.Errorf("Load on empty session = %+v, want zero state", st)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)

	if err := Save(ctx, store, "s1", State{Story: "1", Index: 3}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	st, err := Load(ctx, store, "s1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st != (State{Story: "1", Index: 3}) {
		t.Errorf("Load = %+v", st)
	}

	if err := SaveIndex(ctx, store, "s1", 4); err != nil {
		t.Fatalf("SaveIndex: %v", err)
	}
	st, _ = Load(ctx, store, "s1")
	if st.Index != 4 || st.Story != "1" {
		t.Errorf("after SaveIndex = %+v", st)
	}

	// Stored values use the fixed key names.
	if v, ok, _ := store.Get(ctx, "s1", "story"); !ok || v != "1" {
		t.Errorf("raw story key = %q, %v", v, ok)
	}
	if v, ok, _ := store.Get(ctx, "s1", "index"); !ok || v != "4" {
		t.Errorf("raw index key = %q, %v", v, ok)
	}
}

func TestLoad_BadIndexReadsAsZero(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"abc", "-2", ""} {
		store := NewMemoryStore(0)
		_ = store.Set(ctx, "s1", KeyStory, "1")
		_ = store.Set(ctx, "s1", KeyIndex, raw)

		st, err := Load(ctx, store, "s1")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if st.Index != 0 {
			t.Errorf("index %q loaded as %d, want 0", raw, st.Index)
		}
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	store := failingStore{err: boom}
	ctx := context.Background()

	if _, err := Load(ctx, store, "s1"); !errors.Is(err, boom) {
		t.Errorf("Load error = %v, want boom", err)
	}
	if err := Save(ctx, store, "s1", State{Story: "1"}); !errors.Is(err, boom) {
		t.Errorf("Save error = %v, want boom", err)
	}
	if err := SaveIndex(ctx, store, "s1", 1); !errors.Is(err, boom) {
		t.Errorf("SaveIndex error = %v, want boom", err)
	}
}
