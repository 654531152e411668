package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Ingestion and retrieval must share one implementation: mixing
// embedding models silently produces meaningless similarity scores.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// The result is ordered to match the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}
