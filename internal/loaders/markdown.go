package loaders

import (
	"bytes"
	"os"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown extracts text from Markdown files by rendering to HTML
// and stripping the tags, which preserves block structure as
// newline-separated text.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a Markdown extractor with GFM extensions.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Extensions returns the extensions handled by this extractor.
func (*Markdown) Extensions() []string {
	return []string{".md", ".markdown"}
}

// Extract renders the document to HTML and strips the tags.
func (m *Markdown) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := m.md.Convert(data, &buf); err != nil {
		return "", err
	}
	return StripHTML(buf.String()), nil
}
