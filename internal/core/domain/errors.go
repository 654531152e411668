package domain

import "errors"

// Sentinel errors shared across services and adapters.
var (
	// ErrNotConfigured indicates a required remote credential or
	// identifier is absent. Ingestion triggers treat this as a soft
	// no-op rather than a failure.
	ErrNotConfigured = errors.New("remote source not configured")

	// ErrIngestRunning indicates an ingestion run is already in
	// progress. Callers skip; they do not queue or block.
	ErrIngestRunning = errors.New("ingestion run already in progress")

	// ErrEmptyQuery indicates a question with no text. Rejected
	// before any external call is made.
	ErrEmptyQuery = errors.New("query text is required")

	// ErrInvalidInput indicates a malformed request body.
	ErrInvalidInput = errors.New("invalid input")
)
