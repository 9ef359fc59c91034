package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Segregated store interfaces. *Repository implements all of them;
// consumers depend only on the slice they use.

// Reader provides read access to service requests.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ServiceRequest, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*ServiceRequest, error)
}

// StatusWriter mutates the request lifecycle state.
type StatusWriter interface {
	SetStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status Status) error
	TouchUpdatedTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	AcceptQuoteTx(ctx context.Context, tx pgx.Tx, id, quoteID uuid.UUID) error
}

// PaymentWriter mutates the payment sub-state.
type PaymentWriter interface {
	MarkProcessingTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, sessionID string, feeCents, payoutCents int64) error
	MarkPaidTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, intentID *string, paidAt time.Time) error
	ResetPaymentTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

var (
	_ Reader        = (*Repository)(nil)
	_ StatusWriter  = (*Repository)(nil)
	_ PaymentWriter = (*Repository)(nil)
)
