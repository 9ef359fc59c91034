package repository

import (
	"context"
	"fmt"

	"handylink_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate       = "reviews.repository.create"
	opExists       = "reviews.repository.exists"
	opGet          = "reviews.repository.get"
	opListProvider = "reviews.repository.list_for_provider"
	opListClient   = "reviews.repository.list_for_client"
	opListAll      = "reviews.repository.list_all"
	opDelete       = "reviews.repository.delete"
)

const reviewColumns = `
	id, request_id, client_id, provider_id, rating, comment, created_at`

// Repository provides database operations for reviews.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a reviews repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanReview(row pgx.Row) (*Review, error) {
	var rv Review
	err := row.Scan(&rv.ID, &rv.RequestID, &rv.ClientID, &rv.ProviderID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

// ExistsForRequestTx reports whether the request was already reviewed.
// Runs inside the create transaction with the request row locked.
func (r *Repository) ExistsForRequestTx(ctx context.Context, tx pgx.Tx, requestID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews WHERE request_id = $1)`, requestID).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(fmt.Sprintf("review existence check failed: %v", err)).WithOp(opExists)
	}
	return exists, nil
}

// CreateTx inserts a review inside the create transaction.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, p CreateParams) (*Review, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO reviews (request_id, client_id, provider_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+reviewColumns,
		p.RequestID, p.ClientID, p.ProviderID, p.Rating, p.Comment)
	rv, err := scanReview(row)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("create review failed: %v", err)).WithOp(opCreate)
	}
	return rv, nil
}

// GetByIDTx fetches a review inside a transaction.
func (r *Repository) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Review, error) {
	row := tx.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	rv, err := scanReview(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("review not found").WithOp(opGet)
		}
		return nil, apperr.Internal(fmt.Sprintf("get review failed: %v", err)).WithOp(opGet)
	}
	return rv, nil
}

// ListForProvider returns a provider's reviews with reviewer names,
// newest first.
func (r *Repository) ListForProvider(ctx context.Context, providerID uuid.UUID, limit int) ([]Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT rv.id, rv.request_id, rv.client_id, rv.provider_id, rv.rating, rv.comment, rv.created_at,
		       u.full_name, u.avatar_url
		FROM reviews rv
		JOIN users u ON u.id = rv.client_id
		WHERE rv.provider_id = $1
		ORDER BY rv.created_at DESC
		LIMIT $2
	`, providerID, limit)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list provider reviews failed: %v", err)).WithOp(opListProvider)
	}
	return collectListings(rows, opListProvider)
}

// ListForClient returns the reviews a client wrote, newest first.
func (r *Repository) ListForClient(ctx context.Context, clientID uuid.UUID) ([]Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE client_id = $1 ORDER BY created_at DESC`, clientID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list client reviews failed: %v", err)).WithOp(opListClient)
	}
	defer rows.Close()

	items := make([]Review, 0)
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan review failed: %v", err)).WithOp(opListClient)
		}
		items = append(items, *rv)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate reviews failed: %v", err)).WithOp(opListClient)
	}
	return items, nil
}

// ListAll returns every review with reviewer names, newest first.
// Admin moderation surface.
func (r *Repository) ListAll(ctx context.Context, limit int) ([]Listing, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
		SELECT rv.id, rv.request_id, rv.client_id, rv.provider_id, rv.rating, rv.comment, rv.created_at,
		       u.full_name, u.avatar_url
		FROM reviews rv
		JOIN users u ON u.id = rv.client_id
		ORDER BY rv.created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list reviews failed: %v", err)).WithOp(opListAll)
	}
	return collectListings(rows, opListAll)
}

// DeleteTx removes a review inside the delete transaction.
func (r *Repository) DeleteTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("delete review failed: %v", err)).WithOp(opDelete)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("review not found").WithOp(opDelete)
	}
	return nil
}

func collectListings(rows pgx.Rows, op string) ([]Listing, error) {
	defer rows.Close()

	items := make([]Listing, 0)
	for rows.Next() {
		var l Listing
		err := rows.Scan(
			&l.ID, &l.RequestID, &l.ClientID, &l.ProviderID, &l.Rating, &l.Comment, &l.CreatedAt,
			&l.ClientFullName, &l.ClientAvatarURL,
		)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan review listing failed: %v", err)).WithOp(op)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate review listings failed: %v", err)).WithOp(op)
	}
	return items, nil
}
