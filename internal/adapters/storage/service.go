// Package storage provides S3-compatible object storage for uploaded
// images: avatars, portfolio photos and chat attachments. Stored keys
// are opaque references embedded in user, profile and message records.
package storage

import (
	"context"
	"time"
)

// PresignedURL is one presigned upload or download grant.
type PresignedURL struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service is the object storage surface the modules consume.
type Service interface {
	// GenerateUploadURL creates a presigned PUT URL. The folder prefix
	// scopes keys per purpose (avatars, portfolio, messages).
	GenerateUploadURL(ctx context.Context, folder, fileName, contentType string, sizeBytes int64) (*PresignedURL, error)

	// ResolveURL resolves a stored key to a presigned GET URL, or nil
	// when the object is absent.
	ResolveURL(ctx context.Context, fileKey string) (*PresignedURL, error)

	// ResolveURLs resolves a batch of keys concurrently. The result
	// preserves input order, with nil entries for absent objects.
	ResolveURLs(ctx context.Context, fileKeys []string) ([]*PresignedURL, error)

	// DeleteObject removes a stored object.
	DeleteObject(ctx context.Context, fileKey string) error

	// EnsureBucket creates the configured bucket if it doesn't exist.
	EnsureBucket(ctx context.Context) error
}
