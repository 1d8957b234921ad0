package catalog

import (
	"errors"
	"reflect"
	"testing"

	"storyteller/internal/config"
)

func testStories() []Story {
	return []Story{
		{ID: "2", Title: "The Snowy Day", Segments: []string{"https://example.com/2/0.mp3"}},
		{ID: "1", Title: "Where the Wild Things Are", Segments: []string{"https://example.com/1/0.mp3", "https://example.com/1/1.mp3"}},
	}
}

func TestNew_LookupAndIDs(t *testing.T) {
	c, err := New(testStories())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got, want := c.IDs(), []string{"1", "2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	segs, ok := c.Lookup("1")
	if !ok {
		t.Fatal("Lookup(1) not found")
	}
	if len(segs) != 2 || segs[1] != "https://example.com/1/1.mp3" {
		t.Errorf("Lookup(1) = %v", segs)
	}

	if _, ok := c.Lookup("99"); ok {
		t.Error("Lookup(99) should not be found")
	}
}

func TestNew_CopiesInput(t *testing.T) {
	in := testStories()
	c, err := New(in)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	in[1].Segments[0] = "mutated"

	segs, _ := c.Lookup("1")
	if segs[0] == "mutated" {
		t.Error("catalog shares segment storage with caller")
	}

	ids := c.IDs()
	ids[0] = "mutated"
	if c.IDs()[0] != "1" {
		t.Error("IDs() exposes internal slice")
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name    string
		stories []Story
		wantErr error
	}{
		{"empty id", []Story{{ID: "", Segments: []string{"a"}}}, ErrInvalidStoryID},
		{"delimiter in id", []Story{{ID: "1-2", Segments: []string{"a"}}}, ErrInvalidStoryID},
		{"duplicate id", []Story{{ID: "1", Segments: []string{"a"}}, {ID: "1", Segments: []string{"b"}}}, ErrInvalidStoryID},
		{"no segments", []Story{{ID: "1"}}, ErrEmptyStory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.stories)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTitle(t *testing.T) {
	c, err := New([]Story{
		{ID: "1", Title: "Where the Wild Things Are", Segments: []string{"a"}},
		{ID: "2", Segments: []string{"b"}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := c.Title("1"); got != "Where the Wild Things Are" {
		t.Errorf("Title(1) = %q", got)
	}
	if got := c.Title("2"); got != "2" {
		t.Errorf("Title(2) = %q, want id fallback", got)
	}
	if got := c.Title("nope"); got != "nope" {
		t.Errorf("Title(nope) = %q, want id fallback", got)
	}
}

func TestStories_OrderedCopies(t *testing.T) {
	c, err := New(testStories())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	all := c.Stories()
	if len(all) != 2 || all[0].ID != "1" || all[1].ID != "2" {
		t.Fatalf("Stories() = %+v", all)
	}
	all[0].Segments[0] = "mutated"
	if s, _ := c.Story("1"); s.Segments[0] == "mutated" {
		t.Error("Stories() exposes internal segments")
	}
	if _, ok := c.Story("missing"); ok {
		t.Error("Story(missing) should not be found")
	}
}

func TestFromConfig(t *testing.T) {
	c, err := FromConfig(config.CatalogConfig{
		Stories: map[string]config.StoryConfig{
			"1": {Title: "Where the Wild Things Are", Segments: []string{"a", "b"}},
		},
	})
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if segs, ok := c.Lookup("1"); !ok || len(segs) != 2 {
		t.Errorf("Lookup(1) = %v, %v", segs, ok)
	}
}
