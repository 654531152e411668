package driven

import (
	"context"

	"github.com/askhub-ai/askhub/internal/core/domain"
)

// VectorIndex wraps the hosted vector index: upsert, nearest-
// neighbour query with metadata, and deletion by source file.
type VectorIndex interface {
	// Upsert inserts or replaces vectors in the index.
	Upsert(ctx context.Context, vectors []domain.Vector) error

	// Query returns the topK nearest matches to the query vector,
	// with metadata, in descending score order.
	Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error)

	// DeleteByFile removes every vector previously upserted for the
	// given remote file identifier. Called before re-ingesting a
	// modified file so old chunks do not accumulate.
	DeleteByFile(ctx context.Context, fileID string) error
}
