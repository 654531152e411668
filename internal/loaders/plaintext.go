package loaders

import (
	"os"
	"strings"
)

// PlainText reads files as text with permissive decoding. It is the
// fallback for unknown extensions.
type PlainText struct{}

// Extensions returns the extensions handled by this extractor.
func (*PlainText) Extensions() []string {
	return []string{".txt"}
}

// Extract reads the file, dropping invalid byte sequences rather
// than failing on them.
func (*PlainText) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return permissiveString(data), nil
}

// permissiveString decodes bytes as UTF-8, dropping invalid
// sequences.
func permissiveString(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}
