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
	opCreate        = "quotes.repository.create"
	opExists        = "quotes.repository.exists_for_provider"
	opGet           = "quotes.repository.get"
	opListRequest   = "quotes.repository.list_by_request"
	opListProvider  = "quotes.repository.list_by_provider"
	opQuoterIDs     = "quotes.repository.quoter_ids"
	opAcceptDecline = "quotes.repository.accept_one_decline_rest"
	opSetStatus     = "quotes.repository.set_status"
)

const quoteColumns = `
	id, request_id, provider_id, amount_cents, message, estimated_duration,
	status, created_at, updated_at`

// Repository provides database operations for quotes.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a quotes repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanQuote(row pgx.Row) (*Quote, error) {
	var q Quote
	err := row.Scan(
		&q.ID, &q.RequestID, &q.ProviderID, &q.AmountCents, &q.Message,
		&q.EstimatedDuration, &q.Status, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateTx inserts a quote inside the submit transaction.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, p CreateParams) (*Quote, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO quotes (request_id, provider_id, amount_cents, message, estimated_duration)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+quoteColumns,
		p.RequestID, p.ProviderID, p.AmountCents, p.Message, p.EstimatedDuration,
	)
	q, err := scanQuote(row)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("create quote failed: %v", err)).WithOp(opCreate)
	}
	return q, nil
}

// ExistsForProviderTx reports whether the provider already quoted on the
// request. Runs inside the submit transaction so the one-quote-per-
// provider rule holds without a declared unique constraint.
func (r *Repository) ExistsForProviderTx(ctx context.Context, tx pgx.Tx, requestID, providerID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM quotes WHERE request_id = $1 AND provider_id = $2)
	`, requestID, providerID).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(fmt.Sprintf("check quote existence failed: %v", err)).WithOp(opExists)
	}
	return exists, nil
}

// GetByID fetches a quote.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	return r.get(ctx, r.pool, id)
}

// GetByIDTx fetches a quote inside a transaction. Quote mutations always
// run with the parent request row locked, so the quote row itself is
// never locked separately.
func (r *Repository) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Quote, error) {
	return r.get(ctx, tx, id)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) get(ctx context.Context, q querier, id uuid.UUID) (*Quote, error) {
	row := q.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id)
	quote, err := scanQuote(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("quote not found").WithOp(opGet)
		}
		return nil, apperr.Internal(fmt.Sprintf("get quote failed: %v", err)).WithOp(opGet)
	}
	return quote, nil
}

// ListByRequest returns every quote on a request, newest first.
func (r *Repository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]Quote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE request_id = $1 ORDER BY created_at DESC`, requestID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list quotes by request failed: %v", err)).WithOp(opListRequest)
	}
	return collect(rows, opListRequest)
}

// ListByProvider returns the provider's quotes, newest first.
func (r *Repository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]Quote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+quoteColumns+` FROM quotes WHERE provider_id = $1 ORDER BY created_at DESC`, providerID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list quotes by provider failed: %v", err)).WithOp(opListProvider)
	}
	return collect(rows, opListProvider)
}

func collect(rows pgx.Rows, op string) ([]Quote, error) {
	defer rows.Close()

	items := make([]Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan quote failed: %v", err)).WithOp(op)
		}
		items = append(items, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate quotes failed: %v", err)).WithOp(op)
	}
	return items, nil
}

// QuoterIDsTx returns the distinct providers who quoted on the request.
func (r *Repository) QuoterIDsTx(ctx context.Context, tx pgx.Tx, requestID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx,
		`SELECT DISTINCT provider_id FROM quotes WHERE request_id = $1`, requestID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list quoter ids failed: %v", err)).WithOp(opQuoterIDs)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan quoter id failed: %v", err)).WithOp(opQuoterIDs)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate quoter ids failed: %v", err)).WithOp(opQuoterIDs)
	}
	return ids, nil
}

// HasQuoteFrom reports whether the provider quoted on the request.
func (r *Repository) HasQuoteFrom(ctx context.Context, requestID, providerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM quotes WHERE request_id = $1 AND provider_id = $2)
	`, requestID, providerID).Scan(&exists)
	if err != nil {
		return false, apperr.Internal(fmt.Sprintf("check quote existence failed: %v", err)).WithOp(opExists)
	}
	return exists, nil
}

// AcceptOneDeclineRestTx marks the given quote accepted and every sibling
// on the same request declined, in one statement so no sibling is ever
// left pending.
func (r *Repository) AcceptOneDeclineRestTx(ctx context.Context, tx pgx.Tx, requestID, quoteID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE quotes
		SET status = CASE WHEN id = $2 THEN 'accepted' ELSE 'declined' END,
		    updated_at = now()
		WHERE request_id = $1
	`, requestID, quoteID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("accept quote failed: %v", err)).WithOp(opAcceptDecline)
	}
	return nil
}

// SetStatusTx updates a single quote's status.
func (r *Repository) SetStatusTx(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, status Status) error {
	_, err := tx.Exec(ctx, `
		UPDATE quotes SET status = $2, updated_at = now() WHERE id = $1
	`, quoteID, status)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("set quote status failed: %v", err)).WithOp(opSetStatus)
	}
	return nil
}
