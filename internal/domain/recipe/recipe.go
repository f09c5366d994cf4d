// Package recipe holds the searchable recipe document.
package recipe

// Fields are the display fields of a recipe. They are opaque to scoring and
// passed through to search results unchanged.
type Fields struct {
	Title        string
	ImageName    string
	Instructions string
	Ingredients  string

	// SourceIndex is the row index of the recipe in the upstream dataset, or -1.
	SourceIndex int
}

// Document is a read-only corpus entry (immutable value object).
type Document struct {
	id     int
	tokens []string
	fields Fields
}

// New creates a Document. id is the 0-based corpus row position.
func New(id int, tokens []string, fields Fields) Document {
	t := make([]string, len(tokens))
	copy(t, tokens)
	return Document{id: id, tokens: t, fields: fields}
}

// ID returns the corpus row position.
func (d *Document) ID() int { return d.id }

// Tokens returns the cleaned title + instruction tokens. Callers must not modify the slice.
func (d *Document) Tokens() []string { return d.tokens }

// Fields returns the display fields.
func (d *Document) Fields() Fields { return d.fields }

// Title returns the recipe title.
func (d *Document) Title() string { return d.fields.Title }
