package driving

import (
	"context"

	"github.com/askhub-ai/askhub/internal/core/domain"
)

// IngestRunner triggers one ingestion run.
//
// At most one run is active at a time; a trigger that fires while a
// run is in progress receives domain.ErrIngestRunning and must skip,
// not queue.
type IngestRunner interface {
	Run(ctx context.Context) (domain.IngestSummary, error)
}

// Answerer answers a question from the knowledge base.
type Answerer interface {
	// Answer retrieves the most similar chunks for the query and
	// composes a grounded answer. Returns domain.ErrEmptyQuery for
	// blank input, before any external call is made.
	Answer(ctx context.Context, query string) (string, []domain.Match, error)

	// Retrieve returns ranked matches without composing an answer.
	// topK <= 0 selects the configured default.
	Retrieve(ctx context.Context, query string, topK int) ([]domain.Match, error)
}
