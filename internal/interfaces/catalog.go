package interfaces

// StoryCatalog is the read-only mapping from story id to segment URLs.
type StoryCatalog interface {
	// Lookup returns the ordered segment URLs of a story.
	Lookup(storyID string) ([]string, bool)

	// IDs returns every known story id in a stable order.
	IDs() []string

	// Title returns the human readable title of a story, or the id itself
	// when none was configured.
	Title(storyID string) string
}
