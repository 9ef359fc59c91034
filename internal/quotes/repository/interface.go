package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Segregated store interfaces. *Repository implements all of them;
// consumers depend only on the slice they use.

// Reader provides read access to quotes.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Quote, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*Quote, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]Quote, error)
	ExistsForProviderTx(ctx context.Context, tx pgx.Tx, requestID, providerID uuid.UUID) (bool, error)
}

// Writer mutates quotes.
type Writer interface {
	CreateTx(ctx context.Context, tx pgx.Tx, p CreateParams) (*Quote, error)
	SetStatusTx(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, status Status) error
	AcceptOneDeclineRestTx(ctx context.Context, tx pgx.Tx, requestID, quoteID uuid.UUID) error
}

var (
	_ Reader = (*Repository)(nil)
	_ Writer = (*Repository)(nil)
)
