package service

import (
	"context"
	"fmt"

	"handylink_backend/internal/adapters/storage"
	"handylink_backend/internal/files/transport"
	identitysvc "handylink_backend/internal/identity/service"
)

// Service hands out presigned upload grants and resolves stored keys
// to download URLs.
type Service struct {
	storage  storage.Service
	identity *identitysvc.Service
}

// New creates the files service.
func New(st storage.Service, identity *identitysvc.Service) *Service {
	return &Service{storage: st, identity: identity}
}

// CreateUploadURL returns a presigned PUT grant scoped to the caller.
// Keys are prefixed with the purpose and user id so uploads never
// collide across users.
func (s *Service) CreateUploadURL(ctx context.Context, subject string, req transport.UploadURLRequest) (*storage.PresignedURL, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	folder := fmt.Sprintf("%s/%s", req.Purpose, user.ID)
	return s.storage.GenerateUploadURL(ctx, folder, req.FileName, req.ContentType, req.SizeBytes)
}

// Resolve turns stored keys into download URLs. Absent objects resolve
// to null entries so callers can render placeholders.
func (s *Service) Resolve(ctx context.Context, subject string, keys []string) ([]*storage.PresignedURL, error) {
	if _, err := s.identity.RequireUser(ctx, subject); err != nil {
		return nil, err
	}
	return s.storage.ResolveURLs(ctx, keys)
}
