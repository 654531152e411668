// Package loaders converts files on disk into best-effort plain
// text, dispatching on file extension. Extraction failures are
// logged and yield empty text so one corrupt file never halts an
// ingestion batch.
package loaders

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/askhub-ai/askhub/internal/core/ports/driven"
	"github.com/askhub-ai/askhub/internal/logger"
)

// Ensure Registry implements the port.
var _ driven.Loader = (*Registry)(nil)

// extractor converts one file format into plain text.
type extractor interface {
	// Extensions returns the lower-cased extensions handled,
	// including the leading dot.
	Extensions() []string

	// Extract reads the file and returns its plain text.
	Extract(path string) (string, error)
}

// Registry dispatches to per-format extractors by file extension.
// Unknown extensions fall back to a permissive plain text read.
type Registry struct {
	byExt    map[string]extractor
	fallback extractor
}

// NewRegistry creates a registry with the built-in extractors
// registered: PDF, Markdown, HTML and plain text.
func NewRegistry() *Registry {
	r := &Registry{
		byExt:    make(map[string]extractor),
		fallback: &PlainText{},
	}
	r.register(&PDF{})
	r.register(NewMarkdown())
	r.register(&HTML{})
	r.register(&PlainText{})
	return r
}

func (r *Registry) register(e extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[ext] = e
	}
}

// Load extracts best-effort plain text from the file at path.
// Failures are logged and produce empty text rather than an error.
func (r *Registry) Load(ctx context.Context, path string) string {
	if err := ctx.Err(); err != nil {
		return ""
	}

	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.byExt[ext]
	if !ok {
		e = r.fallback
	}

	text, err := e.Extract(path)
	if err != nil {
		logger.Warn("loaders: failed to extract %s: %v", path, err)
		return ""
	}
	return text
}
