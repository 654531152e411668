package domain

// RemoteFile describes a file discovered in the configured remote
// folder. The identifier is opaque and stable across syncs.
type RemoteFile struct {
	// ID is the remote identifier assigned by the drive service.
	ID string

	// Name is the display name of the file.
	Name string

	// MIMEType is the MIME type reported by the drive service.
	MIMEType string

	// ModifiedTime is the last-modified timestamp as returned by the
	// drive service. It is opaque and compared only for equality.
	ModifiedTime string
}

// Chunk is a bounded span of text derived from one source file,
// sized for embedding.
type Chunk struct {
	// ID is a unique identifier, fresh for every ingestion run.
	ID string `json:"id"`

	// Text is the chunk payload.
	Text string `json:"text"`

	// Source is the staging path of the file the chunk came from.
	Source string `json:"source"`

	// Title is the human-readable title, derived from the file name.
	Title string `json:"title"`

	// Tokens is the token count of Text under the embedding model's
	// token scheme. Never exceeds the configured maximum chunk size.
	Tokens int `json:"tokens"`
}

// Vector is an embedding ready for upsert into the vector index.
type Vector struct {
	// ID matches the chunk the vector was derived from.
	ID string

	// Values is the embedding produced by the embedding service.
	Values []float32

	// Metadata is attached to the vector and returned with query
	// matches. Carries title, source, text and file_id.
	Metadata map[string]any
}

// Match is one retrieval result for a query. Ephemeral; exists only
// for the lifetime of a single question-answer request.
type Match struct {
	// Score is the similarity score reported by the index.
	Score float64 `json:"score"`

	// Title is the chunk's human-readable title.
	Title string `json:"title"`

	// Source is the chunk's source path.
	Source string `json:"source"`

	// Text is the chunk payload.
	Text string `json:"text"`

	// FileID is the remote identifier of the originating file.
	FileID string `json:"-"`
}

// IngestSummary reports the outcome of one ingestion run.
type IngestSummary struct {
	// Found is the number of files in the changed set.
	Found int `json:"found"`

	// Processed is the number of files chunked, embedded and upserted.
	Processed int `json:"processed"`

	// Skipped is the number of files that yielded no extractable text
	// and were recorded so they are not retried.
	Skipped int `json:"skipped"`
}
