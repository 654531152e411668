// Package drive implements the DriveConnector port against the
// Google Drive v3 API using a service account.
package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/time/rate"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/askhub-ai/askhub/internal/core/domain"
	"github.com/askhub-ai/askhub/internal/core/ports/driven"
)

// Ensure Connector implements the port.
var _ driven.DriveConnector = (*Connector)(nil)

// mimeTypeFolder marks Drive folders, which are never ingested.
const mimeTypeFolder = "application/vnd.google-apps.folder"

// listPageSize is the page size for files.list requests.
const listPageSize = 1000

// listFields limits the listing response to the fields the sync
// needs.
const listFields = "nextPageToken, files(id, name, mimeType, modifiedTime)"

// Drive allows 10 requests per second per user; stay below that.
const (
	requestsPerSecond = 8.0
	burstSize         = 10
)

// Connector lists and downloads files from Google Drive.
//
// The underlying service is built lazily on first use so that a
// missing credential file surfaces as domain.ErrNotConfigured on
// each run instead of failing process startup.
type Connector struct {
	credentialsPath string
	limiter         *rate.Limiter

	mu  sync.Mutex
	svc *gdrive.Service
}

// NewConnector creates a connector that authenticates with the
// service account JSON at credentialsPath.
func NewConnector(credentialsPath string) *Connector {
	return &Connector{
		credentialsPath: credentialsPath,
		limiter:         rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
	}
}

// service returns the Drive service, building it on first use.
func (c *Connector) service(ctx context.Context) (*gdrive.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.svc != nil {
		return c.svc, nil
	}

	if c.credentialsPath == "" {
		return nil, fmt.Errorf("%w: GOOGLE_SERVICE_ACCOUNT_JSON not set", domain.ErrNotConfigured)
	}
	if _, err := os.Stat(c.credentialsPath); err != nil {
		return nil, fmt.Errorf("%w: service account file %s not found", domain.ErrNotConfigured, c.credentialsPath)
	}

	svc, err := gdrive.NewService(ctx,
		option.WithCredentialsFile(c.credentialsPath),
		option.WithScopes(gdrive.DriveReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	c.svc = svc
	return svc, nil
}

// ListFolder returns every non-folder, non-trashed file in the given
// folder with its identifier, name, MIME type and modified time.
func (c *Connector) ListFolder(ctx context.Context, folderID string) ([]domain.RemoteFile, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var files []domain.RemoteFile
	call := svc.Files.List().
		Q(fmt.Sprintf("'%s' in parents and trashed=false", folderID)).
		PageSize(listPageSize).
		Fields(listFields)

	err = call.Pages(ctx, func(page *gdrive.FileList) error {
		for _, f := range page.Files {
			if f.MimeType == mimeTypeFolder {
				continue
			}
			files = append(files, domain.RemoteFile{
				ID:           f.Id,
				Name:         f.Name,
				MIMEType:     f.MimeType,
				ModifiedTime: f.ModifiedTime,
			})
		}
		// Throttle the next page request.
		return c.limiter.Wait(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folderID, wrapError(err))
	}

	return files, nil
}

// Download fetches the file's content to destPath, creating parent
// directories as needed.
func (c *Connector) Download(ctx context.Context, fileID, destPath string) error {
	svc, err := c.service(ctx)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("download file %s: %w", fileID, wrapError(err))
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o700); err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write staging file: %w", err)
	}
	return nil
}
