package drive

import (
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Common Drive API errors.
var (
	// ErrUnauthorized indicates invalid or expired credentials.
	ErrUnauthorized = errors.New("drive: unauthorised (invalid credentials)")

	// ErrForbidden indicates insufficient permissions on the folder.
	ErrForbidden = errors.New("drive: forbidden (insufficient permissions)")

	// ErrNotFound indicates the folder or file was not found.
	ErrNotFound = errors.New("drive: resource not found")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("drive: rate limit exceeded")
)

// wrapError converts a Drive API error to a more specific error type.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}

	switch gerr.Code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return err
	}
}
