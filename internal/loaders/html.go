package loaders

import (
	"html"
	"os"
	"regexp"
	"strings"
)

// HTML extracts visible text from HTML files.
type HTML struct{}

// Extensions returns the extensions handled by this extractor.
func (*HTML) Extensions() []string {
	return []string{".html", ".htm"}
}

// Extract strips script, style and noscript content entirely, then
// extracts the visible text with block structure preserved as
// newlines.
func (*HTML) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return StripHTML(permissiveString(data)), nil
}

// Pre-compiled expressions for tag stripping.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	closingBlocks = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|ul|ol|tr|blockquote|pre|table|section|article)>`)
	brTags        = regexp.MustCompile(`(?i)<br\s*/?>`)
	hrTags        = regexp.MustCompile(`(?i)<hr\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
)

// StripHTML converts an HTML fragment to newline-separated visible
// text. Shared with the Markdown extractor, which renders to HTML
// first.
func StripHTML(content string) string {
	content = scriptTag.ReplaceAllString(content, "")
	content = styleTag.ReplaceAllString(content, "")
	content = noscriptTag.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	// Preserve block structure as line breaks before removing tags.
	content = closingBlocks.ReplaceAllString(content, "\n")
	content = brTags.ReplaceAllString(content, "\n")
	content = hrTags.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")

	content = html.UnescapeString(content)

	// Tidy the line structure; full cleaning happens downstream.
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
