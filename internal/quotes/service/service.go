package service

import (
	"context"
	"fmt"
	"math"

	identityrepo "handylink_backend/internal/identity/repository"
	notifrepo "handylink_backend/internal/notifications/repository"
	notifsvc "handylink_backend/internal/notifications/service"
	"handylink_backend/internal/quotes/repository"
	"handylink_backend/internal/quotes/transport"
	requestrepo "handylink_backend/internal/requests/repository"
	"handylink_backend/platform/apperr"
	"handylink_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store is the quote persistence slice this service needs.
type Store interface {
	repository.Reader
	repository.Writer
}

// RequestStore is the request persistence slice this service needs.
type RequestStore interface {
	requestrepo.Reader
	requestrepo.StatusWriter
}

// Identity resolves users. Implemented by the identity service.
type Identity interface {
	RequireUser(ctx context.Context, subjectID string) (*identityrepo.User, error)
}

// Notifier writes notification rows in the caller's transaction and
// publishes them after commit. Implemented by the notifications service.
type Notifier interface {
	DeliverTx(ctx context.Context, tx pgx.Tx, rows []notifrepo.Row) ([]notifrepo.Notification, error)
	Publish(ctx context.Context, created []notifrepo.Notification)
}

// Service implements the quote lifecycle.
type Service struct {
	pool     db.Beginner
	repo     Store
	requests RequestStore
	identity Identity
	notifier Notifier
}

// New creates the quotes service.
func New(pool db.Beginner, repo Store, requests RequestStore, identity Identity, notifier Notifier) *Service {
	return &Service{
		pool:     pool,
		repo:     repo,
		requests: requests,
		identity: identity,
		notifier: notifier,
	}
}

// Submit creates a provider's quote on a request. A quote on an open
// request moves it to in_discussion; on in_discussion or accepted it
// only bumps updatedAt. Closed requests reject quotes, and a provider
// may quote a given request once.
func (s *Service) Submit(ctx context.Context, subject string, req transport.SubmitRequest) (*repository.Quote, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := identityrepo.RequireRole(user, identityrepo.RoleProvider); err != nil {
		return nil, err
	}

	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return nil, apperr.Validation("invalid request id")
	}

	var quote *repository.Quote
	var created []notifrepo.Notification

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		sr, err := s.requests.GetByIDTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if sr.Status.Terminal() {
			return apperr.Conflict("request is closed for quotes")
		}

		exists, err := s.repo.ExistsForProviderTx(ctx, tx, requestID, user.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("you already submitted a quote for this request")
		}

		quote, err = s.repo.CreateTx(ctx, tx, repository.CreateParams{
			RequestID:         requestID,
			ProviderID:        user.ID,
			AmountCents:       int64(math.Round(req.Amount * 100)),
			Message:           req.Message,
			EstimatedDuration: req.EstimatedDuration,
		})
		if err != nil {
			return err
		}

		if sr.Status == requestrepo.StatusOpen {
			if err := s.requests.SetStatusTx(ctx, tx, requestID, requestrepo.StatusInDiscussion); err != nil {
				return err
			}
		} else {
			if err := s.requests.TouchUpdatedTx(ctx, tx, requestID); err != nil {
				return err
			}
		}

		rows := notifsvc.NewQuoteRow(sr.ClientID, user.ID, requestID, quote.ID,
			"New quote", fmt.Sprintf("%s sent a quote for \"%s\"", user.FullName, sr.Title))
		created, err = s.notifier.DeliverTx(ctx, tx, rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, created)
	return quote, nil
}

// Respond accepts or declines a quote. Declining flips only that quote.
// Direct acceptance is an admin privilege: accepting marks the quote
// accepted, declines every sibling, and moves the request to accepted.
// Clients accept through the checkout flow instead.
func (s *Service) Respond(ctx context.Context, subject string, quoteID uuid.UUID, action string) (*repository.Quote, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	var result *repository.Quote
	var created []notifrepo.Notification

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		quote, err := s.repo.GetByIDTx(ctx, tx, quoteID)
		if err != nil {
			return err
		}

		sr, err := s.requests.GetByIDTx(ctx, tx, quote.RequestID)
		if err != nil {
			return err
		}
		if sr.ClientID != user.ID && !user.IsAdmin {
			return apperr.Forbidden("forbidden")
		}
		if quote.Status != repository.StatusPending {
			return apperr.Conflict("quote is no longer pending")
		}

		switch action {
		case "decline":
			if err := s.repo.SetStatusTx(ctx, tx, quoteID, repository.StatusDeclined); err != nil {
				return err
			}
			quote.Status = repository.StatusDeclined
			rows := notifsvc.QuoteResponseRow(quote.ProviderID, user.ID, sr.ID, quoteID,
				"Quote declined", fmt.Sprintf("Your quote for \"%s\" was declined", sr.Title))
			created, err = s.notifier.DeliverTx(ctx, tx, rows)
			if err != nil {
				return err
			}
		case "accept":
			if !user.IsAdmin {
				return apperr.Conflict("quote acceptance requires checkout")
			}
			if sr.Status.Terminal() {
				return apperr.Conflict("request is closed")
			}
			if err := s.repo.AcceptOneDeclineRestTx(ctx, tx, sr.ID, quoteID); err != nil {
				return err
			}
			if err := s.requests.AcceptQuoteTx(ctx, tx, sr.ID, quoteID); err != nil {
				return err
			}
			quote.Status = repository.StatusAccepted
			rows := notifsvc.QuoteResponseRow(quote.ProviderID, user.ID, sr.ID, quoteID,
				"Quote accepted", fmt.Sprintf("Your quote for \"%s\" was accepted", sr.Title))
			created, err = s.notifier.DeliverTx(ctx, tx, rows)
			if err != nil {
				return err
			}
		default:
			return apperr.Validation("action must be accept or decline")
		}

		result = quote
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, created)
	return result, nil
}

// ListMine returns the calling provider's quotes.
func (s *Service) ListMine(ctx context.Context, subject string) ([]repository.Quote, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := identityrepo.RequireRole(user, identityrepo.RoleProvider); err != nil {
		return nil, err
	}
	return s.repo.ListByProvider(ctx, user.ID)
}
