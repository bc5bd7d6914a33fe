package storage

import (
	"context"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader is the object-storage collaborator used for club, track
// and event imagery. The portal core never touches storage directly.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	// GetPublicURL derives the public URL for a stored key. An empty
	// string means the key cannot be served and the caller should fall
	// back to a default asset.
	GetPublicURL(key string) string
}
