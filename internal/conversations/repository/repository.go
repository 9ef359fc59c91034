package repository

import (
	"context"
	"fmt"
	"time"

	"handylink_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opFindPair      = "conversations.repository.find_by_pair"
	opCreate        = "conversations.repository.create"
	opGet           = "conversations.repository.get"
	opList          = "conversations.repository.list"
	opMembers       = "conversations.repository.members"
	opMessages      = "conversations.repository.messages"
	opInsertMessage = "conversations.repository.insert_message"
	opTouchLast     = "conversations.repository.touch_last_message"
	opIncrUnread    = "conversations.repository.increment_unread"
	opMarkRead      = "conversations.repository.mark_read"
	opSetTyping     = "conversations.repository.set_typing"
)

// markReadWindow bounds how many recent messages a mark-as-read scans.
const markReadWindow = 200

const conversationColumns = `
	id, request_id, last_message_at, last_message_text, last_message_sender_id, created_at`

const memberColumns = `
	id, conversation_id, user_id, unread_count, last_read_at, last_typing_at, created_at`

const messageColumns = `
	id, conversation_id, sender_id, content, image_key, is_read, created_at`

// Repository provides database operations for conversations, members
// and messages.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a conversations repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanConversation(row pgx.Row) (*Conversation, error) {
	var c Conversation
	err := row.Scan(&c.ID, &c.RequestID, &c.LastMessageAt, &c.LastMessageText, &c.LastMessageSenderID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.ConversationID, &m.UserID, &m.UnreadCount, &m.LastReadAt, &m.LastTypingAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.ImageKey, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByPairTx returns the existing conversation between the two users
// for the given request (or the request-less one), or nil.
func (r *Repository) FindByPairTx(ctx context.Context, tx pgx.Tx, userA, userB uuid.UUID, requestID *uuid.UUID) (*Conversation, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations c
		WHERE c.request_id IS NOT DISTINCT FROM $3
		  AND EXISTS (SELECT 1 FROM conversation_members WHERE conversation_id = c.id AND user_id = $1)
		  AND EXISTS (SELECT 1 FROM conversation_members WHERE conversation_id = c.id AND user_id = $2)
		LIMIT 1
	`, userA, userB, requestID)
	conv, err := scanConversation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, apperr.Internal(fmt.Sprintf("find conversation failed: %v", err)).WithOp(opFindPair)
	}
	return conv, nil
}

// CreateTx inserts a conversation with its two member rows.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, userA, userB uuid.UUID, requestID *uuid.UUID) (*Conversation, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO conversations (request_id) VALUES ($1)
		RETURNING `+conversationColumns, requestID)
	conv, err := scanConversation(row)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("create conversation failed: %v", err)).WithOp(opCreate)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO conversation_members (conversation_id, user_id) VALUES ($1, $2), ($1, $3)
	`, conv.ID, userA, userB)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("create conversation members failed: %v", err)).WithOp(opCreate)
	}
	return conv, nil
}

// GetByID fetches a conversation.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+conversationColumns+` FROM conversations WHERE id = $1`, id)
	conv, err := scanConversation(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("conversation not found").WithOp(opGet)
		}
		return nil, apperr.Internal(fmt.Sprintf("get conversation failed: %v", err)).WithOp(opGet)
	}
	return conv, nil
}

// ListForUser returns the user's inbox, most recent activity first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.request_id, c.last_message_at, c.last_message_text, c.last_message_sender_id, c.created_at,
		       me.unread_count, other.user_id, u.full_name, u.avatar_url
		FROM conversations c
		JOIN conversation_members me ON me.conversation_id = c.id AND me.user_id = $1
		JOIN conversation_members other ON other.conversation_id = c.id AND other.user_id <> $1
		JOIN users u ON u.id = other.user_id
		ORDER BY c.last_message_at DESC NULLS LAST, c.created_at DESC
	`, userID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list conversations failed: %v", err)).WithOp(opList)
	}
	defer rows.Close()

	items := make([]Listing, 0)
	for rows.Next() {
		var l Listing
		err := rows.Scan(
			&l.ID, &l.RequestID, &l.LastMessageAt, &l.LastMessageText, &l.LastMessageSenderID, &l.CreatedAt,
			&l.UnreadCount, &l.OtherUserID, &l.OtherFullName, &l.OtherAvatarURL,
		)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan conversation listing failed: %v", err)).WithOp(opList)
		}
		items = append(items, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate conversation listings failed: %v", err)).WithOp(opList)
	}
	return items, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Members returns the two member rows of a conversation.
func (r *Repository) Members(ctx context.Context, conversationID uuid.UUID) ([]Member, error) {
	return r.members(ctx, r.pool, conversationID)
}

// MembersTx returns the member rows inside a transaction with the rows
// locked, serializing unread bookkeeping per conversation.
func (r *Repository) MembersTx(ctx context.Context, tx pgx.Tx, conversationID uuid.UUID) ([]Member, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+memberColumns+` FROM conversation_members WHERE conversation_id = $1 ORDER BY created_at FOR UPDATE`,
		conversationID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("lock conversation members failed: %v", err)).WithOp(opMembers)
	}
	return collectMembers(rows)
}

func (r *Repository) members(ctx context.Context, q querier, conversationID uuid.UUID) ([]Member, error) {
	rows, err := q.Query(ctx,
		`SELECT `+memberColumns+` FROM conversation_members WHERE conversation_id = $1 ORDER BY created_at`,
		conversationID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list conversation members failed: %v", err)).WithOp(opMembers)
	}
	return collectMembers(rows)
}

func collectMembers(rows pgx.Rows) ([]Member, error) {
	defer rows.Close()

	items := make([]Member, 0, 2)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan conversation member failed: %v", err)).WithOp(opMembers)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate conversation members failed: %v", err)).WithOp(opMembers)
	}
	return items, nil
}

// Messages returns the conversation's messages, oldest first.
func (r *Repository) Messages(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+messageColumns+` FROM (
			SELECT `+messageColumns+` FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC
	`, conversationID, limit)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list messages failed: %v", err)).WithOp(opMessages)
	}
	defer rows.Close()

	items := make([]Message, 0, limit)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan message failed: %v", err)).WithOp(opMessages)
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate messages failed: %v", err)).WithOp(opMessages)
	}
	return items, nil
}

// InsertMessageTx inserts a message inside the send transaction.
func (r *Repository) InsertMessageTx(ctx context.Context, tx pgx.Tx, conversationID, senderID uuid.UUID, content string, imageKey *string) (*Message, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO messages (conversation_id, sender_id, content, image_key)
		VALUES ($1, $2, $3, $4)
		RETURNING `+messageColumns, conversationID, senderID, content, imageKey)
	m, err := scanMessage(row)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("insert message failed: %v", err)).WithOp(opInsertMessage)
	}
	return m, nil
}

// TouchLastMessageTx denormalizes the last-message fields.
func (r *Repository) TouchLastMessageTx(ctx context.Context, tx pgx.Tx, conversationID, senderID uuid.UUID, text string, at time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE conversations
		SET last_message_at = $2, last_message_text = $3, last_message_sender_id = $4
		WHERE id = $1
	`, conversationID, at, text, senderID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("touch last message failed: %v", err)).WithOp(opTouchLast)
	}
	return nil
}

// IncrementUnreadTx bumps one member's unread counter by exactly one.
func (r *Repository) IncrementUnreadTx(ctx context.Context, tx pgx.Tx, memberID uuid.UUID) error {
	_, err := tx.Exec(ctx,
		`UPDATE conversation_members SET unread_count = unread_count + 1 WHERE id = $1`, memberID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("increment unread failed: %v", err)).WithOp(opIncrUnread)
	}
	return nil
}

// MarkReadTx flips isRead on the most recent messages not sent by the
// caller and resets the caller's unread counter. The scan is bounded to
// the recent window rather than backfilling the full history.
func (r *Repository) MarkReadTx(ctx context.Context, tx pgx.Tx, conversationID, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE id IN (
			SELECT id FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT $3
		) AND sender_id <> $2 AND is_read = FALSE
	`, conversationID, userID, markReadWindow)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("mark messages read failed: %v", err)).WithOp(opMarkRead)
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversation_members
		SET unread_count = 0, last_read_at = now()
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, userID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("reset unread count failed: %v", err)).WithOp(opMarkRead)
	}
	return nil
}

// SetTyping stamps the member's typing timestamp.
func (r *Repository) SetTyping(ctx context.Context, conversationID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE conversation_members SET last_typing_at = now()
		WHERE conversation_id = $1 AND user_id = $2
	`, conversationID, userID)
	if err != nil {
		return apperr.Internal(fmt.Sprintf("set typing failed: %v", err)).WithOp(opSetTyping)
	}
	return nil
}
