package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askhub-ai/askhub/internal/core/domain"
)

// fakeConnector serves a fixed file listing and records downloads.
type fakeConnector struct {
	files       []domain.RemoteFile
	listErr     error
	downloads   []string
	downloadErr error

	listStarted chan struct{}
	listRelease chan struct{}
}

func (c *fakeConnector) ListFolder(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
	if c.listStarted != nil {
		close(c.listStarted)
		c.listStarted = nil
		<-c.listRelease
	}
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.files, nil
}

func (c *fakeConnector) Download(ctx context.Context, fileID, destPath string) error {
	c.downloads = append(c.downloads, fileID)
	return c.downloadErr
}

// fakeLoader returns canned text per staged path.
type fakeLoader struct {
	texts map[string]string
}

func (l *fakeLoader) Load(ctx context.Context, path string) string {
	return l.texts[path]
}

// fakeChunker emits one chunk per non-blank paragraph.
type fakeChunker struct{}

func (fakeChunker) Split(text, source, title string) []domain.Chunk {
	var chunks []domain.Chunk
	for i, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p == "" {
			continue
		}
		chunks = append(chunks, domain.Chunk{
			ID:     fmt.Sprintf("%s-%d", title, i),
			Text:   p,
			Source: source,
			Title:  title,
			Tokens: len(p),
		})
	}
	return chunks
}

type fakeEmbedder struct {
	batchErr   error
	batchCalls int
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.1, 0.2}, nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.batchCalls++
	if e.batchErr != nil {
		return nil, e.batchErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 0.5}
	}
	return out, nil
}

func (e *fakeEmbedder) ModelName() string { return "fake-embedder" }

type fakeIndex struct {
	upserted   []domain.Vector
	deleted    []string
	matches    []domain.Match
	upsertErr  error
	queryErr   error
	queryCalls int
	lastTopK   int
}

func (x *fakeIndex) Upsert(ctx context.Context, vectors []domain.Vector) error {
	if x.upsertErr != nil {
		return x.upsertErr
	}
	x.upserted = append(x.upserted, vectors...)
	return nil
}

func (x *fakeIndex) Query(ctx context.Context, vector []float32, topK int) ([]domain.Match, error) {
	x.queryCalls++
	x.lastTopK = topK
	if x.queryErr != nil {
		return nil, x.queryErr
	}
	return x.matches, nil
}

func (x *fakeIndex) DeleteByFile(ctx context.Context, fileID string) error {
	x.deleted = append(x.deleted, fileID)
	return nil
}

type fakeStateStore struct {
	state     map[string]string
	saveCalls int
	loadErr   error
	saveErr   error
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{state: make(map[string]string)}
}

func (s *fakeStateStore) Load(ctx context.Context) (map[string]string, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	out := make(map[string]string, len(s.state))
	for k, v := range s.state {
		out[k] = v
	}
	return out, nil
}

func (s *fakeStateStore) Save(ctx context.Context, state map[string]string) error {
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.state = state
	return nil
}

type ingestFixture struct {
	connector *fakeConnector
	loader    *fakeLoader
	embedder  *fakeEmbedder
	index     *fakeIndex
	states    *fakeStateStore
	service   *IngestService
}

func newIngestFixture(t *testing.T, files ...domain.RemoteFile) *ingestFixture {
	t.Helper()
	f := &ingestFixture{
		connector: &fakeConnector{files: files},
		loader:    &fakeLoader{texts: make(map[string]string)},
		embedder:  &fakeEmbedder{},
		index:     &fakeIndex{},
		states:    newFakeStateStore(),
	}
	f.service = NewIngestService(
		IngestConfig{FolderID: "folder-1", StagingDir: "data/raw"},
		f.connector, f.loader, fakeChunker{}, f.embedder, f.index, f.states,
	)
	return f
}

// stage registers the text the loader will return for a file name.
func (f *ingestFixture) stage(name, text string) {
	f.loader.texts["data/raw/"+name] = text
}

func TestRun_FirstSight(t *testing.T) {
	f := newIngestFixture(t, domain.RemoteFile{
		ID: "f1", Name: "notes.txt", ModifiedTime: "t1",
	})
	f.stage("notes.txt", "First paragraph.\n\nSecond paragraph.")

	summary, err := f.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.IngestSummary{Found: 1, Processed: 1}, summary)

	assert.Equal(t, []string{"f1"}, f.connector.downloads)
	assert.Equal(t, []string{"f1"}, f.index.deleted)
	require.Len(t, f.index.upserted, 2)
	assert.Equal(t, "First paragraph.", f.index.upserted[0].Metadata["text"])
	assert.Equal(t, "f1", f.index.upserted[0].Metadata["file_id"])
	assert.Equal(t, "notes", f.index.upserted[0].Metadata["title"])
	assert.Equal(t, "data/raw/notes.txt", f.index.upserted[0].Metadata["source"])

	assert.Equal(t, map[string]string{"f1": "t1"}, f.states.state)
	assert.Equal(t, 1, f.states.saveCalls)
}

func TestRun_UnchangedFileUntouched(t *testing.T) {
	f := newIngestFixture(t, domain.RemoteFile{
		ID: "f1", Name: "notes.txt", ModifiedTime: "t1",
	})
	f.states.state["f1"] = "t1"

	summary, err := f.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.IngestSummary{}, summary)

	assert.Empty(t, f.connector.downloads)
	assert.Zero(t, f.embedder.batchCalls)
	assert.Empty(t, f.index.upserted)
	assert.Empty(t, f.index.deleted)
}

func TestRun_ModifiedFileReprocessed(t *testing.T) {
	f := newIngestFixture(t, domain.RemoteFile{
		ID: "f1", Name: "notes.txt", ModifiedTime: "t2",
	})
	f.states.state["f1"] = "t1"
	f.stage("notes.txt", "Updated body.")

	summary, err := f.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.IngestSummary{Found: 1, Processed: 1}, summary)

	// Stale vectors are removed before the new set goes in.
	assert.Equal(t, []string{"f1"}, f.index.deleted)
	assert.Equal(t, "t2", f.states.state["f1"])
}

func TestRun_EmptyFileSkippedOnce(t *testing.T) {
	f := newIngestFixture(t, domain.RemoteFile{
		ID: "f1", Name: "scan.pdf", ModifiedTime: "t1",
	})
	f.stage("scan.pdf", "")

	summary, err := f.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.IngestSummary{Found: 1, Skipped: 1}, summary)
	assert.Zero(t, f.embedder.batchCalls)
	assert.Empty(t, f.index.deleted)

	// The file is recorded so the next run does not retry it.
	summary, err = f.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.IngestSummary{}, summary)
}

func TestRun_EmbedFailureRetriedNextRun(t *testing.T) {
	f := newIngestFixture(t,
		domain.RemoteFile{ID: "f1", Name: "ok.txt", ModifiedTime: "t1"},
		domain.RemoteFile{ID: "f2", Name: "bad.txt", ModifiedTime: "t1"},
	)
	f.stage("ok.txt", "Fine content.")
	f.stage("bad.txt", "Doomed content.")

	calls := 0
	f.service.embedder = &scriptedEmbedder{fn: func() error {
		calls++
		if calls == 2 {
			return errors.New("quota exceeded")
		}
		return nil
	}}

	summary, err := f.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.IngestSummary{Found: 2, Processed: 1}, summary)

	// Only the successful file is in the state; the failed one is
	// picked up again on the next pass.
	assert.Equal(t, map[string]string{"f1": "t1"}, f.states.state)

	summary, err = f.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.IngestSummary{Found: 1, Processed: 1}, summary)
	assert.Equal(t, "t1", f.states.state["f2"])
}

// scriptedEmbedder fails or succeeds per call.
type scriptedEmbedder struct {
	fn func() error
}

func (e *scriptedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0}, nil
}

func (e *scriptedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.fn(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0}
	}
	return out, nil
}

func (e *scriptedEmbedder) ModelName() string { return "scripted" }

func TestRun_NoFolderConfigured(t *testing.T) {
	f := newIngestFixture(t)
	f.service.cfg.FolderID = ""

	summary, err := f.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.IngestSummary{}, summary)
}

func TestRun_ConnectorNotConfigured(t *testing.T) {
	f := newIngestFixture(t)
	f.connector.listErr = fmt.Errorf("%w: no credentials file", domain.ErrNotConfigured)

	summary, err := f.service.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.IngestSummary{}, summary)
}

func TestRun_ListFailureAbortsRun(t *testing.T) {
	f := newIngestFixture(t)
	f.connector.listErr = errors.New("backend unavailable")

	_, err := f.service.Run(context.Background())
	assert.Error(t, err)
	assert.Zero(t, f.states.saveCalls)
}

func TestRun_ConcurrentTriggerRejected(t *testing.T) {
	f := newIngestFixture(t)
	f.connector.listStarted = make(chan struct{})
	f.connector.listRelease = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Run(context.Background())
		done <- err
	}()

	<-f.connector.listStarted
	_, err := f.service.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrIngestRunning)

	close(f.connector.listRelease)
	require.NoError(t, <-done)

	// The guard releases once the run completes.
	_, err = f.service.Run(context.Background())
	require.NoError(t, err)
}
