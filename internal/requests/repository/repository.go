package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"handylink_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate       = "requests.repository.create"
	opGet          = "requests.repository.get"
	opList         = "requests.repository.list"
	opListOpen     = "requests.repository.list_open_for_provider"
	opSetStatus    = "requests.repository.set_status"
	opAcceptQuote  = "requests.repository.accept_quote"
	opMarkProc     = "requests.repository.mark_processing"
	opMarkPaid     = "requests.repository.mark_paid"
	opResetPayment = "requests.repository.reset_payment"
	opTouchUpdated = "requests.repository.touch_updated"
)

const requestColumns = `
	id, client_id, category_slug, title, description, photos,
	lat, lng, address, city, urgency, budget_min, budget_max,
	status, accepted_quote_id,
	payment_status, checkout_session_id, payment_intent_id,
	platform_fee_cents, provider_payout_cents, paid_at,
	created_at, updated_at`

// Repository provides database operations for service requests.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a requests repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanRequest(row pgx.Row) (*ServiceRequest, error) {
	var sr ServiceRequest
	err := row.Scan(
		&sr.ID, &sr.ClientID, &sr.CategorySlug, &sr.Title, &sr.Description, &sr.Photos,
		&sr.Lat, &sr.Lng, &sr.Address, &sr.City, &sr.Urgency, &sr.BudgetMinCents, &sr.BudgetMaxCents,
		&sr.Status, &sr.AcceptedQuoteID,
		&sr.PaymentStatus, &sr.CheckoutSessionID, &sr.PaymentIntentID,
		&sr.PlatformFeeCents, &sr.ProviderPayoutCents, &sr.PaidAt,
		&sr.CreatedAt, &sr.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

// Create inserts a new open request.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*ServiceRequest, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO service_requests
			(client_id, category_slug, title, description, photos,
			 lat, lng, address, city, urgency, budget_min, budget_max)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+requestColumns,
		p.ClientID, p.CategorySlug, p.Title, p.Description, p.Photos,
		p.Lat, p.Lng, p.Address, p.City, p.Urgency, p.BudgetMinCents, p.BudgetMaxCents,
	)
	sr, err := scanRequest(row)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("create service request failed: %v", err)).WithOp(opCreate)
	}
	return sr, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// GetByID fetches a request.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*ServiceRequest, error) {
	return r.get(ctx, r.pool, id, "")
}

// GetByIDTx fetches a request inside a transaction with its row locked,
// serializing concurrent state transitions on the same request.
func (r *Repository) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*ServiceRequest, error) {
	return r.get(ctx, tx, id, " FOR UPDATE")
}

func (r *Repository) get(ctx context.Context, q querier, id uuid.UUID, suffix string) (*ServiceRequest, error) {
	row := q.QueryRow(ctx, `SELECT `+requestColumns+` FROM service_requests WHERE id = $1`+suffix, id)
	sr, err := scanRequest(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("service request not found").WithOp(opGet)
		}
		return nil, apperr.Internal(fmt.Sprintf("get service request failed: %v", err)).WithOp(opGet)
	}
	return sr, nil
}

// List returns requests matching the filter, newest first.
func (r *Repository) List(ctx context.Context, p ListParams) ([]ServiceRequest, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 50
	}

	where := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.ClientID != nil {
		where = append(where, "client_id = "+arg(*p.ClientID))
	}
	if p.Status != "" {
		where = append(where, "status = "+arg(p.Status))
	}
	if p.CategorySlug != "" {
		where = append(where, "category_slug = "+arg(p.CategorySlug))
	}
	if p.City != "" {
		where = append(where, "city = "+arg(p.City))
	}

	query := fmt.Sprintf(`SELECT %s FROM service_requests WHERE %s ORDER BY created_at DESC LIMIT %s`,
		requestColumns, strings.Join(where, " AND "), arg(limit))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list service requests failed: %v", err)).WithOp(opList)
	}
	return collect(rows, opList)
}

// ListOpenForProvider returns open requests in the provider's service
// areas and categories, newest first.
func (r *Repository) ListOpenForProvider(ctx context.Context, cities, categories []string, limit int) ([]ServiceRequest, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+`
		FROM service_requests
		WHERE status = 'open' AND city = ANY($1) AND category_slug = ANY($2)
		ORDER BY created_at DESC
		LIMIT $3
	`, cities, categories, limit)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list open requests failed: %v", err)).WithOp(opListOpen)
	}
	return collect(rows, opListOpen)
}

func collect(rows pgx.Rows, op string) ([]ServiceRequest, error) {
	defer rows.Close()

	items := make([]ServiceRequest, 0)
	for rows.Next() {
		sr, err := scanRequest(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan service request failed: %v", err)).WithOp(op)
		}
		items = append(items, *sr)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate service requests failed: %v", err)).WithOp(op)
	}
	return items, nil
}

// SetStatusTx updates the request status inside a transaction.
func (r *Repository) SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status Status) error {
	_, err := tx.Exec(ctx, `
		UPDATE service_requests SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("set request status failed: %v", err)).WithOp(opSetStatus)
	}
	return nil
}

// TouchUpdatedTx bumps updated_at without changing status. Used when a
// quote lands on a request already in discussion.
func (r *Repository) TouchUpdatedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`UPDATE service_requests SET updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("touch request failed: %v", err)).WithOp(opTouchUpdated)
	}
	return nil
}

// AcceptQuoteTx records the accepted quote and flips the request status.
func (r *Repository) AcceptQuoteTx(ctx context.Context, tx pgx.Tx, id, quoteID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE service_requests
		SET status = 'accepted', accepted_quote_id = $2, updated_at = now()
		WHERE id = $1
	`, id, quoteID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("accept quote on request failed: %v", err)).WithOp(opAcceptQuote)
	}
	return nil
}

// MarkProcessingTx records the checkout session and precomputed amounts.
func (r *Repository) MarkProcessingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, sessionID string, feeCents, payoutCents int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE service_requests
		SET payment_status = 'processing', checkout_session_id = $2,
		    platform_fee_cents = $3, provider_payout_cents = $4, updated_at = now()
		WHERE id = $1
	`, id, sessionID, feeCents, payoutCents)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark request processing failed: %v", err)).WithOp(opMarkProc)
	}
	return nil
}

// MarkPaidTx finalizes the payment sub-state.
func (r *Repository) MarkPaidTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, intentID *string, paidAt time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE service_requests
		SET payment_status = 'paid', payment_intent_id = $2, paid_at = $3, updated_at = now()
		WHERE id = $1
	`, id, intentID, paidAt)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark request paid failed: %v", err)).WithOp(opMarkPaid)
	}
	return nil
}

// ResetPaymentTx clears the payment sub-state back to unpaid.
func (r *Repository) ResetPaymentTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE service_requests
		SET payment_status = 'unpaid', checkout_session_id = NULL,
		    payment_intent_id = NULL, platform_fee_cents = NULL,
		    provider_payout_cents = NULL, updated_at = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("reset request payment failed: %v", err)).WithOp(opResetPayment)
	}
	return nil
}
