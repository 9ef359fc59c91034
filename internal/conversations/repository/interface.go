package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store is the full conversation persistence surface used by the
// service layer. *Repository implements it.
type Store interface {
	FindByPairTx(ctx context.Context, tx pgx.Tx, userA, userB uuid.UUID, requestID *uuid.UUID) (*Conversation, error)
	CreateTx(ctx context.Context, tx pgx.Tx, userA, userB uuid.UUID, requestID *uuid.UUID) (*Conversation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Listing, error)
	Members(ctx context.Context, conversationID uuid.UUID) ([]Member, error)
	MembersTx(ctx context.Context, tx pgx.Tx, conversationID uuid.UUID) ([]Member, error)
	Messages(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error)
	InsertMessageTx(ctx context.Context, tx pgx.Tx, conversationID, senderID uuid.UUID, content string, imageKey *string) (*Message, error)
	TouchLastMessageTx(ctx context.Context, tx pgx.Tx, conversationID, senderID uuid.UUID, text string, at time.Time) error
	IncrementUnreadTx(ctx context.Context, tx pgx.Tx, memberID uuid.UUID) error
	MarkReadTx(ctx context.Context, tx pgx.Tx, conversationID, userID uuid.UUID) error
	SetTyping(ctx context.Context, conversationID, userID uuid.UUID) error
}

var _ Store = (*Repository)(nil)
