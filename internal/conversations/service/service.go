package service

import (
	"context"
	"fmt"
	"time"

	"handylink_backend/internal/conversations/repository"
	"handylink_backend/internal/conversations/transport"
	identityrepo "handylink_backend/internal/identity/repository"
	notifrepo "handylink_backend/internal/notifications/repository"
	notifsvc "handylink_backend/internal/notifications/service"
	"handylink_backend/platform/apperr"
	"handylink_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// typingWindow is how long a typing stamp counts as "still typing".
const typingWindow = 3 * time.Second

// defaultMessageLimit bounds the message page returned by Get.
const defaultMessageLimit = 100

// imagePlaceholder stands in for the last-message preview of an
// image-only message.
const imagePlaceholder = "[image]"

// Identity resolves users. Implemented by the identity service.
type Identity interface {
	RequireUser(ctx context.Context, subjectID string) (*identityrepo.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*identityrepo.User, error)
}

// Notifier writes notification rows in the caller's transaction and
// publishes them after commit. Implemented by the notifications service.
type Notifier interface {
	DeliverTx(ctx context.Context, tx pgx.Tx, rows []notifrepo.Row) ([]notifrepo.Notification, error)
	Publish(ctx context.Context, created []notifrepo.Notification)
}

// Service implements two-party chat with per-member unread bookkeeping.
type Service struct {
	pool     db.Beginner
	repo     repository.Store
	identity Identity
	notifier Notifier
}

// New creates the conversations service.
func New(pool db.Beginner, repo repository.Store, identity Identity, notifier Notifier) *Service {
	return &Service{
		pool:     pool,
		repo:     repo,
		identity: identity,
		notifier: notifier,
	}
}

// Detail is a conversation with its recent messages and the other
// participant's public fields.
type Detail struct {
	repository.Conversation
	Messages       []repository.Message `json:"messages"`
	OtherUserID    uuid.UUID            `json:"otherUserId"`
	OtherFullName  string               `json:"otherFullName"`
	OtherAvatarURL *string              `json:"otherAvatarUrl,omitempty"`
	OtherTyping    bool                 `json:"otherTyping"`
	UnreadCount    int                  `json:"unreadCount"`
}

// Start opens a conversation with another user, reusing the existing
// one for the same pair and request when present.
func (s *Service) Start(ctx context.Context, subject string, req transport.StartRequest) (*repository.Conversation, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	otherID, err := uuid.Parse(req.OtherUserID)
	if err != nil {
		return nil, apperr.Validation("invalid user id")
	}
	if otherID == user.ID {
		return nil, apperr.Validation("cannot start a conversation with yourself")
	}

	var requestID *uuid.UUID
	if req.RequestID != nil {
		id, err := uuid.Parse(*req.RequestID)
		if err != nil {
			return nil, apperr.Validation("invalid request id")
		}
		requestID = &id
	}

	if _, err := s.identity.GetUser(ctx, otherID); err != nil {
		return nil, err
	}

	var conv *repository.Conversation
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		existing, err := s.repo.FindByPairTx(ctx, tx, user.ID, otherID, requestID)
		if err != nil {
			return err
		}
		if existing != nil {
			conv = existing
			return nil
		}
		conv, err = s.repo.CreateTx(ctx, tx, user.ID, otherID, requestID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// List returns the caller's inbox.
func (s *Service) List(ctx context.Context, subject string) ([]repository.Listing, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForUser(ctx, user.ID)
}

// Get returns a conversation the caller belongs to, with its recent
// messages and the other party's typing state.
func (s *Service) Get(ctx context.Context, subject string, conversationID uuid.UUID) (*Detail, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	me, other, err := s.resolveMembers(ctx, conversationID, user)
	if err != nil {
		return nil, err
	}

	otherUser, err := s.identity.GetUser(ctx, other.UserID)
	if err != nil {
		return nil, err
	}

	messages, err := s.repo.Messages(ctx, conversationID, defaultMessageLimit)
	if err != nil {
		return nil, err
	}

	return &Detail{
		Conversation:   *conv,
		Messages:       messages,
		OtherUserID:    otherUser.ID,
		OtherFullName:  otherUser.FullName,
		OtherAvatarURL: otherUser.AvatarURL,
		OtherTyping:    typing(other, time.Now()),
		UnreadCount:    me.UnreadCount,
	}, nil
}

// SendMessage inserts a message and, in the same transaction, updates
// the denormalized last-message fields, bumps the other member's unread
// counter by one, and records the new-message notification.
func (s *Service) SendMessage(ctx context.Context, subject string, conversationID uuid.UUID, req transport.SendMessageRequest) (*repository.Message, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	if req.Content == "" && req.ImageKey == nil {
		return nil, apperr.Validation("message needs content or an image")
	}

	var msg *repository.Message
	var created []notifrepo.Notification

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		members, err := s.repo.MembersTx(ctx, tx, conversationID)
		if err != nil {
			return err
		}
		_, other, err := splitMembers(members, user.ID)
		if err != nil {
			return err
		}

		msg, err = s.repo.InsertMessageTx(ctx, tx, conversationID, user.ID, req.Content, req.ImageKey)
		if err != nil {
			return err
		}

		preview := req.Content
		if preview == "" {
			preview = imagePlaceholder
		}
		if err := s.repo.TouchLastMessageTx(ctx, tx, conversationID, user.ID, preview, msg.CreatedAt); err != nil {
			return err
		}
		if err := s.repo.IncrementUnreadTx(ctx, tx, other.ID); err != nil {
			return err
		}

		rows := notifsvc.NewMessageRow(other.UserID, user.ID, conversationID, msg.ID,
			"New message", fmt.Sprintf("%s: %s", user.FullName, preview))
		created, err = s.notifier.DeliverTx(ctx, tx, rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, created)
	return msg, nil
}

// MarkAsRead flips isRead on recent messages from the other party and
// zeroes the caller's unread counter.
func (s *Service) MarkAsRead(ctx context.Context, subject string, conversationID uuid.UUID) error {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return err
	}

	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		members, err := s.repo.MembersTx(ctx, tx, conversationID)
		if err != nil {
			return err
		}
		if _, _, err := splitMembers(members, user.ID); err != nil {
			return err
		}
		return s.repo.MarkReadTx(ctx, tx, conversationID, user.ID)
	})
}

// SetTyping stamps the caller's typing timestamp.
func (s *Service) SetTyping(ctx context.Context, subject string, conversationID uuid.UUID) error {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return err
	}
	if _, _, err := s.resolveMembers(ctx, conversationID, user); err != nil {
		return err
	}
	return s.repo.SetTyping(ctx, conversationID, user.ID)
}

// GetTyping reports whether the other participant typed within the
// liveness window. There is no clear-on-stop signal; staleness alone
// ends the indicator.
func (s *Service) GetTyping(ctx context.Context, subject string, conversationID uuid.UUID) (bool, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return false, err
	}
	_, other, err := s.resolveMembers(ctx, conversationID, user)
	if err != nil {
		return false, err
	}
	return typing(other, time.Now()), nil
}

func (s *Service) resolveMembers(ctx context.Context, conversationID uuid.UUID, user *identityrepo.User) (*repository.Member, *repository.Member, error) {
	members, err := s.repo.Members(ctx, conversationID)
	if err != nil {
		return nil, nil, err
	}
	return splitMembers(members, user.ID)
}

// splitMembers picks the caller's and the other party's member rows,
// failing with Forbidden when the caller is not a participant.
func splitMembers(members []repository.Member, userID uuid.UUID) (*repository.Member, *repository.Member, error) {
	var me, other *repository.Member
	for i := range members {
		if members[i].UserID == userID {
			me = &members[i]
		} else {
			other = &members[i]
		}
	}
	if me == nil || other == nil {
		return nil, nil, apperr.Forbidden("not a conversation participant")
	}
	return me, other, nil
}

func typing(m *repository.Member, now time.Time) bool {
	return m.LastTypingAt != nil && now.Sub(*m.LastTypingAt) < typingWindow
}
