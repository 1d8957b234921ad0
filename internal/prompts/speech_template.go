package prompts

import (
	"fmt"
	"strings"
	"sync"
	"text/template"

	"storyteller/internal/config"
)

// Template names.
const (
	Launch       = "launch"
	Begin        = "begin"
	UnknownStory = "unknown_story"
	End          = "end"
	Pause        = "pause"
	Farewell     = "farewell"
	Unsupported  = "unsupported"
	Help         = "help"
	Failure      = "failure"
)

var defaultTemplates = map[string]string{
	Launch:       "What story would you like me to tell?",
	Begin:        "All right, I'll read {{.Value}}.",
	UnknownStory: "I can't read {{.Story}}.",
	End:          "The end.",
	Pause:        "Paused.",
	Farewell:     "Goodbye.",
	Unsupported:  "Sorry, I can't do that while telling a story.",
	Help:         "I can read {{join .Titles \", \"}}. Which story would you like?",
	Failure:      "Sorry, something went wrong. Please try again.",
}

// TemplateContext holds the variables available to speech templates.
type TemplateContext struct {
	// Story is the story id.
	Story string
	// Title is the catalog title of Story.
	Title string
	// Value is what the user said for the story slot.
	Value string
	// Titles lists every story in the catalog.
	Titles []string
}

// TemplateEngine renders the spoken replies.
type TemplateEngine struct {
	templates map[string]*template.Template
	mu        sync.RWMutex
}

var funcs = template.FuncMap{"join": strings.Join}

// NewTemplateEngine creates an engine with the built-in replies.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*template.Template)}
	for name, src := range defaultTemplates {
		// Built-in templates are constants; a parse failure is a programming error.
		template.Must(e.parse(name, src))
	}
	return e
}

// FromConfig creates an engine and applies the non-empty overrides in cfg.
func FromConfig(cfg config.MessagesConfig) (*TemplateEngine, error) {
	e := NewTemplateEngine()
	overrides := map[string]string{
		Launch:       cfg.Launch,
		Begin:        cfg.Begin,
		UnknownStory: cfg.UnknownStory,
		End:          cfg.End,
		Pause:        cfg.Pause,
		Farewell:     cfg.Farewell,
		Unsupported:  cfg.Unsupported,
		Help:         cfg.Help,
		Failure:      cfg.Failure,
	}
	for name, src := range overrides {
		if src == "" {
			continue
		}
		if err := e.RegisterTemplate(name, src); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// RegisterTemplate parses src and stores it under name, replacing any
// previous template.
func (e *TemplateEngine) RegisterTemplate(name, src string) error {
	if _, err := e.parse(name, src); err != nil {
		return fmt.Errorf("failed to register template %s: %w", name, err)
	}
	return nil
}

func (e *TemplateEngine) parse(name, src string) (*template.Template, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.templates[name] = t
	e.mu.Unlock()
	return t, nil
}

// Render renders a template with the given context
func (e *TemplateEngine) Render(name string, ctx TemplateContext) (string, error) {
	e.mu.RLock()
	t, ok := e.templates[name]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template not found: %s", name)
	}

	var b strings.Builder
	if err := t.Execute(&b, ctx); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return b.String(), nil
}
