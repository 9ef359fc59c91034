package service

import (
	"context"

	identitysvc "handylink_backend/internal/identity/service"
	"handylink_backend/internal/notifications/repository"
	"handylink_backend/platform/events"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const maxListLimit = 200

// CreatedEventName is the bus topic for post-commit notification pushes.
const CreatedEventName = "notifications.created"

// CreatedEvent is published after the owning transaction commits so the
// SSE layer can push the fresh rows to connected clients.
type CreatedEvent struct {
	events.BaseEvent
	Notifications []repository.Notification
}

// EventName implements events.Event.
func (CreatedEvent) EventName() string {
	return CreatedEventName
}

// Service exposes notification reads and the delivery seam used by the
// rest of the application.
type Service struct {
	repo     *repository.Repository
	identity *identitysvc.Service
	bus      events.Bus
}

// New creates the notifications service.
func New(repo *repository.Repository, identity *identitysvc.Service, bus events.Bus) *Service {
	return &Service{repo: repo, identity: identity, bus: bus}
}

// DeliverTx inserts notification rows inside the caller's transaction.
// The returned rows must be handed to Publish after the transaction
// commits; publishing before commit would push rows that may roll back.
func (s *Service) DeliverTx(ctx context.Context, tx pgx.Tx, rows []repository.Row) ([]repository.Notification, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	return s.repo.InsertTx(ctx, tx, rows)
}

// Publish emits the post-commit event that drives SSE pushes.
func (s *Service) Publish(ctx context.Context, created []repository.Notification) {
	if len(created) == 0 {
		return
	}
	s.bus.Publish(ctx, CreatedEvent{
		BaseEvent:     events.NewBaseEvent(),
		Notifications: created,
	})
}

// List returns the caller's notifications, newest first.
func (s *Service) List(ctx context.Context, subject string, limit int) ([]repository.Notification, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 50
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, user.ID, limit)
}

// UnreadCount returns the caller's unread notification count.
func (s *Service) UnreadCount(ctx context.Context, subject string) (int, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return 0, err
	}
	return s.repo.CountUnread(ctx, user.ID)
}

// MarkRead marks the given notifications read, or every unread one when
// no ids are supplied.
func (s *Service) MarkRead(ctx context.Context, subject string, ids []uuid.UUID) error {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return err
	}

	if len(ids) == 0 {
		return s.repo.MarkAllRead(ctx, user.ID)
	}
	return s.repo.MarkRead(ctx, user.ID, ids)
}
