package driven

import (
	"context"

	"github.com/askhub-ai/askhub/internal/core/domain"
)

// Loader converts a file on disk into best-effort plain text.
//
// Extraction failures are logged by the implementation and yield
// empty text; a single corrupt file never halts the batch.
type Loader interface {
	Load(ctx context.Context, path string) string
}

// Chunker splits cleaned text into bounded, overlapping token
// windows with stable metadata. Empty input yields zero chunks.
type Chunker interface {
	Split(text, source, title string) []domain.Chunk
}
