package service

import (
	"context"
	"strings"

	"handylink_backend/internal/categories/repository"
	"handylink_backend/internal/categories/transport"
	"handylink_backend/platform/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service implements category listing and admin curation.
type Service struct {
	pool *pgxpool.Pool
	repo *repository.Repository
}

// New creates the categories service.
func New(pool *pgxpool.Pool, repo *repository.Repository) *Service {
	return &Service{pool: pool, repo: repo}
}

// ListActive returns the active categories in display order. Public.
func (s *Service) ListActive(ctx context.Context) ([]repository.Category, error) {
	return s.repo.List(ctx, true)
}

// ListAll returns every category, inactive ones included.
func (s *Service) ListAll(ctx context.Context) ([]repository.Category, error) {
	return s.repo.List(ctx, false)
}

// GetBySlug fetches one category.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*repository.Category, error) {
	return s.repo.GetBySlug(ctx, normalizeSlug(slug))
}

// Upsert creates or updates a category. Slugs are lowercased so lookups
// stay case-insensitive.
func (s *Service) Upsert(ctx context.Context, req transport.UpsertRequest) (*repository.Category, error) {
	return s.repo.Upsert(ctx, repository.UpsertParams{
		Slug:     normalizeSlug(req.Slug),
		Name:     req.Name,
		Icon:     req.Icon,
		IsActive: req.IsActive,
	})
}

// Reorder reassigns sequential sort orders 1..n following the given
// slug order.
func (s *Service) Reorder(ctx context.Context, req transport.ReorderRequest) error {
	slugs := make([]string, len(req.Slugs))
	for i, slug := range req.Slugs {
		slugs[i] = normalizeSlug(slug)
	}
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		return s.repo.ReorderTx(ctx, tx, slugs)
	})
}

func normalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
