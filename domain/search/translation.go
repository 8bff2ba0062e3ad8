package search

// Translation is the result of translating a non-Latin query.
type Translation struct {
	text        string
	suggestions []string
}

// NewTranslation creates a Translation.
func NewTranslation(text string, suggestions []string) Translation {
	s := make([]string, len(suggestions))
	copy(s, suggestions)
	return Translation{text: text, suggestions: s}
}

// Text returns the translated query.
func (t Translation) Text() string { return t.text }

// Suggestions returns the related terms supplied by the translator.
func (t Translation) Suggestions() []string {
	s := make([]string, len(t.suggestions))
	copy(s, t.suggestions)
	return s
}
