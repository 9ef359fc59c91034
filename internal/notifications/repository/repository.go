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
	opInsert      = "notifications.repository.insert"
	opList        = "notifications.repository.list"
	opCountUnread = "notifications.repository.count_unread"
	opMarkRead    = "notifications.repository.mark_read"
	opMarkAllRead = "notifications.repository.mark_all_read"
)

// Repository persists notification rows.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a notifications repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertTx writes notification rows inside the caller's transaction so
// they commit or roll back with the operation that produced them.
func (r *Repository) InsertTx(ctx context.Context, tx pgx.Tx, rows []Row) ([]Notification, error) {
	out := make([]Notification, 0, len(rows))
	for _, row := range rows {
		var n Notification
		err := tx.QueryRow(ctx, `
			INSERT INTO notifications (user_id, type, title, body, data)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, user_id, type, title, body, data, is_read, created_at
		`, row.UserID, row.Type, row.Title, row.Body, row.Data).Scan(
			&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Data, &n.IsRead, &n.CreatedAt,
		)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("insert notification failed: %v", err)).WithOp(opInsert)
		}
		out = append(out, n)
	}
	return out, nil
}

// List returns the user's notifications, newest first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, type, title, body, data, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list notifications failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	items := make([]Notification, 0, limit)
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Data, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan notification failed: %v", err)).WithOp(opList)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate notifications failed: %v", err)).WithOp(opList)
	}
	return items, nil
}

// CountUnread returns the user's unread notification count.
func (r *Repository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
	`, userID).Scan(&count)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("count unread notifications failed: %v", err)).WithOp(opCountUnread)
	}
	return count, nil
}

// MarkRead flips isRead on the given notifications, scoped to the owner.
func (r *Repository) MarkRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND id = ANY($2)
	`, userID, ids)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark notifications read failed: %v", err)).WithOp(opMarkRead)
	}
	return nil
}

// MarkAllRead flips isRead on every unread notification for the user.
func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark all notifications read failed: %v", err)).WithOp(opMarkAllRead)
	}
	return nil
}
