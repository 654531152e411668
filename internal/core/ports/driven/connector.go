package driven

import (
	"context"

	"github.com/askhub-ai/askhub/internal/core/domain"
)

// DriveConnector lists and fetches files from the remote drive
// folder. It is an external collaborator boundary; implementations
// wrap the hosted drive API.
type DriveConnector interface {
	// ListFolder returns every non-folder file in the given remote
	// folder. Returns domain.ErrNotConfigured (wrapped) when the
	// credential artefact is absent.
	ListFolder(ctx context.Context, folderID string) ([]domain.RemoteFile, error)

	// Download fetches a file's content to destPath, creating parent
	// directories as needed.
	Download(ctx context.Context, fileID, destPath string) error
}
