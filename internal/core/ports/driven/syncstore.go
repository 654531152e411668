package driven

import "context"

// SyncStateStore persists the mapping of remote file identifier to
// the last-modified timestamp at which the file was processed.
//
// Save overwrites the full mapping; callers load, mutate, then save
// the complete map. Not safe for concurrent writers; the ingestion
// service guarantees a single active run.
type SyncStateStore interface {
	// Load returns the persisted mapping, or an empty map when
	// nothing has been persisted yet.
	Load(ctx context.Context) (map[string]string, error)

	// Save persists the full mapping, replacing prior content.
	Save(ctx context.Context, state map[string]string) error
}
