package prompts

import (
	"strings"
	"testing"

	"storyteller/internal/config"
)

func TestDefaults(t *testing.T) {
	e := NewTemplateEngine()
	tests := []struct {
		name string
		ctx  TemplateContext
		want string
	}{
		{Launch, TemplateContext{}, "What story would you like me to tell?"},
		{Begin, TemplateContext{Value: "where the wild things are"}, "All right, I'll read where the wild things are."},
		{UnknownStory, TemplateContext{Story: "7"}, "I can't read 7."},
		{End, TemplateContext{}, "The end."},
		{Help, TemplateContext{Titles: []string{"A", "B"}}, "I can read A, B. Which story would you like?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Render(tt.name, tt.ctx)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render(%s) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	if _, err := NewTemplateEngine().Render("nope", TemplateContext{}); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestFromConfig_Overrides(t *testing.T) {
	e, err := FromConfig(config.MessagesConfig{
		End:   "And they lived happily ever after.",
		Begin: "Here is {{.Title}}.",
	})
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if got, _ := e.Render(End, TemplateContext{}); got != "And they lived happily ever after." {
		t.Errorf("End = %q", got)
	}
	if got, _ := e.Render(Begin, TemplateContext{Title: "The Snowy Day"}); got != "Here is The Snowy Day." {
		t.Errorf("Begin = %q", got)
	}
	if got, _ := e.Render(Launch, TemplateContext{}); got != defaultTemplates[Launch] {
		t.Errorf("Launch = %q, want default", got)
	}
}

func TestFromConfig_BadTemplate(t *testing.T) {
	_, err := FromConfig(config.MessagesConfig{Pause: "{{.Story"})
	if err == nil || !strings.Contains(err.Error(), "pause") {
		t.Fatalf("error = %v, want parse error naming the template", err)
	}
}
