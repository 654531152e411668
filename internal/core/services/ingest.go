// Package services contains the application's use cases: the
// ingestion orchestrator, the answer composer and the ingestion
// scheduler. Services depend only on ports so tests can substitute
// fakes for the hosted collaborators.
package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/askhub-ai/askhub/internal/core/domain"
	"github.com/askhub-ai/askhub/internal/core/ports/driven"
	"github.com/askhub-ai/askhub/internal/core/ports/driving"
	"github.com/askhub-ai/askhub/internal/logger"
	"github.com/askhub-ai/askhub/internal/textproc"
)

// Ensure IngestService implements the interface.
var _ driving.IngestRunner = (*IngestService)(nil)

// IngestConfig holds ingestion settings.
type IngestConfig struct {
	// FolderID is the remote folder to sync. Empty disables
	// ingestion without error.
	FolderID string

	// StagingDir is where downloaded files are staged before
	// loading.
	StagingDir string
}

// IngestService detects new or modified files in the remote folder,
// downloads them, splits them into chunks, embeds the chunks and
// upserts the vectors into the index, tracking progress in the sync
// state store.
type IngestService struct {
	cfg       IngestConfig
	connector driven.DriveConnector
	loader    driven.Loader
	chunker   driven.Chunker
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	states    driven.SyncStateStore

	mu      sync.Mutex
	running bool
}

// NewIngestService creates the ingestion orchestrator.
func NewIngestService(
	cfg IngestConfig,
	connector driven.DriveConnector,
	loader driven.Loader,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	states driven.SyncStateStore,
) *IngestService {
	return &IngestService{
		cfg:       cfg,
		connector: connector,
		loader:    loader,
		chunker:   chunker,
		embedder:  embedder,
		index:     index,
		states:    states,
	}
}

// Run performs one ingestion pass.
//
// At most one run is active at a time: a caller that arrives while a
// run is in progress receives domain.ErrIngestRunning immediately.
// An unconfigured folder or missing credential artefact yields a
// zero-count summary without error so the startup and timer triggers
// never crash the process.
func (s *IngestService) Run(ctx context.Context) (domain.IngestSummary, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return domain.IngestSummary{}, domain.ErrIngestRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if s.cfg.FolderID == "" {
		logger.Warn("ingest: remote folder not configured, skipping run")
		return domain.IngestSummary{}, nil
	}

	state, err := s.states.Load(ctx)
	if err != nil {
		return domain.IngestSummary{}, fmt.Errorf("load sync state: %w", err)
	}

	files, err := s.connector.ListFolder(ctx, s.cfg.FolderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			logger.Warn("ingest: %v, skipping run", err)
			return domain.IngestSummary{}, nil
		}
		// Cannot know what changed; abort the whole run. The next
		// scheduled trigger retries from scratch.
		return domain.IngestSummary{}, fmt.Errorf("list remote folder: %w", err)
	}

	changed := changedSet(files, state)
	summary := domain.IngestSummary{Found: len(changed)}
	if len(changed) == 0 {
		logger.Debug("ingest: no new or modified files")
		return summary, nil
	}
	logger.Info("ingest: %d file(s) in changed set", len(changed))

	for _, f := range changed {
		processed, err := s.processFile(ctx, f)
		if err != nil {
			// Isolated to this file: leave it out of the state so
			// the next run retries it, and keep going.
			logger.Error("ingest: %s: %v", f.Name, err)
			continue
		}
		if processed {
			summary.Processed++
		} else {
			// Recording a file that yielded no chunks prevents
			// endless retry of files with no extractable text.
			summary.Skipped++
		}
		state[f.ID] = f.ModifiedTime
	}

	if err := s.states.Save(ctx, state); err != nil {
		return summary, fmt.Errorf("save sync state: %w", err)
	}

	logger.Info("ingest: run complete: found=%d processed=%d skipped=%d",
		summary.Found, summary.Processed, summary.Skipped)
	return summary, nil
}

// changedSet selects files absent from the state or whose timestamp
// differs from the stored value, preserving listing order.
func changedSet(files []domain.RemoteFile, state map[string]string) []domain.RemoteFile {
	var changed []domain.RemoteFile
	for _, f := range files {
		if seen, ok := state[f.ID]; !ok || seen != f.ModifiedTime {
			changed = append(changed, f)
		}
	}
	return changed
}

// processFile runs one file through download, load, clean, chunk,
// embed and upsert. It reports whether the file produced chunks;
// an error means the file must not be marked as processed.
func (s *IngestService) processFile(ctx context.Context, f domain.RemoteFile) (bool, error) {
	dest := filepath.Join(s.cfg.StagingDir, sanitiseName(f.Name))
	if err := s.connector.Download(ctx, f.ID, dest); err != nil {
		return false, fmt.Errorf("download: %w", err)
	}

	text := textproc.Clean(s.loader.Load(ctx, dest))
	chunks := s.chunker.Split(text, dest, titleFromName(f.Name))
	if len(chunks) == 0 {
		logger.Info("ingest: %s: no extractable text", f.Name)
		return false, nil
	}

	// Supersede any vectors from a previous version of this file
	// before inserting the new set.
	if err := s.index.DeleteByFile(ctx, f.ID); err != nil {
		return false, fmt.Errorf("delete stale vectors: %w", err)
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return false, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return false, fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}

	vectors := make([]domain.Vector, len(chunks))
	for i, ch := range chunks {
		vectors[i] = domain.Vector{
			ID:     ch.ID,
			Values: embeddings[i],
			Metadata: map[string]any{
				"title":   ch.Title,
				"source":  ch.Source,
				"text":    ch.Text,
				"file_id": f.ID,
			},
		}
	}
	if err := s.index.Upsert(ctx, vectors); err != nil {
		return false, fmt.Errorf("upsert vectors: %w", err)
	}

	logger.Info("ingest: %s: %d chunk(s) upserted", f.Name, len(chunks))
	return true, nil
}

// sanitiseName keeps a display name a single path segment.
func sanitiseName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	return name
}

// titleFromName derives a human-readable title from a file name.
func titleFromName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
