package loaders

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF extracts text from PDF files page by page.
type PDF struct{}

// Extensions returns the extensions handled by this extractor.
func (*PDF) Extensions() []string {
	return []string{".pdf"}
}

// Extract concatenates the plain text of every page, separated by
// newlines. A page that fails extraction contributes an empty string
// rather than aborting the whole file.
func (*PDF) Extract(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			b.WriteString("\n")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}
