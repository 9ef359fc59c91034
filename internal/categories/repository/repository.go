package repository

import (
	"context"
	"fmt"

	"handylink_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opList    = "categories.repository.list"
	opGet     = "categories.repository.get"
	opUpsert  = "categories.repository.upsert"
	opReorder = "categories.repository.reorder"
)

const categoryColumns = `
	id, slug, name, icon, sort_order, is_active, created_at`

// Repository provides database operations for categories.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a categories repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Slug, &c.Name, &c.Icon, &c.SortOrder, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns categories in display order, optionally only active ones.
func (r *Repository) List(ctx context.Context, activeOnly bool) ([]Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY sort_order, slug`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list categories failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	items := make([]Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan category failed: %v", err)).WithOp(opList)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate categories failed: %v", err)).WithOp(opList)
	}
	return items, nil
}

// GetBySlug fetches one category.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
	c, err := scanCategory(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("category not found").WithOp(opGet)
		}
		return nil, apperr.Internal(fmt.Sprintf("get category failed: %v", err)).WithOp(opGet)
	}
	return c, nil
}

// Upsert inserts or updates a category by slug. New categories sort
// after the existing ones.
func (r *Repository) Upsert(ctx context.Context, p UpsertParams) (*Category, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories (slug, name, icon, is_active, sort_order)
		VALUES ($1, $2, $3, $4, (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM categories))
		ON CONFLICT (slug) DO UPDATE
		SET name = EXCLUDED.name, icon = EXCLUDED.icon, is_active = EXCLUDED.is_active
		RETURNING `+categoryColumns,
		p.Slug, p.Name, p.Icon, p.IsActive)
	c, err := scanCategory(row)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("upsert category failed: %v", err)).WithOp(opUpsert)
	}
	return c, nil
}

// ReorderTx reassigns sequential sort orders following the given slug
// order inside one transaction.
func (r *Repository) ReorderTx(ctx context.Context, tx pgx.Tx, slugs []string) error {
	for i, slug := range slugs {
		tag, err := tx.Exec(ctx,
			`UPDATE categories SET sort_order = $2 WHERE slug = $1`, slug, i+1)
		if err != nil {
			return apperr.Internal(fmt.Sprintf("reorder category failed: %v", err)).WithOp(opReorder)
		}
		if tag.RowsAffected() == 0 {
			return apperr.NotFound(fmt.Sprintf("category %q not found", slug)).WithOp(opReorder)
		}
	}
	return nil
}
