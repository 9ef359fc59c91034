package service

import (
	"context"
	"fmt"

	identitysvc "handylink_backend/internal/identity/service"
	notifrepo "handylink_backend/internal/notifications/repository"
	notifsvc "handylink_backend/internal/notifications/service"
	providerrepo "handylink_backend/internal/providers/repository"
	quoterepo "handylink_backend/internal/quotes/repository"
	requestrepo "handylink_backend/internal/requests/repository"
	"handylink_backend/internal/reviews/repository"
	"handylink_backend/internal/reviews/transport"
	"handylink_backend/platform/apperr"
	"handylink_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service implements review creation, listing and admin removal, and
// keeps the provider profile's rating aggregates in step.
type Service struct {
	pool      *pgxpool.Pool
	repo      *repository.Repository
	requests  *requestrepo.Repository
	quotes    *quoterepo.Repository
	providers *providerrepo.Repository
	identity  *identitysvc.Service
	notifier  *notifsvc.Service
}

// New creates the reviews service.
func New(pool *pgxpool.Pool, repo *repository.Repository, requests *requestrepo.Repository, quotes *quoterepo.Repository, providers *providerrepo.Repository, identity *identitysvc.Service, notifier *notifsvc.Service) *Service {
	return &Service{
		pool:      pool,
		repo:      repo,
		requests:  requests,
		quotes:    quotes,
		providers: providers,
		identity:  identity,
		notifier:  notifier,
	}
}

// Create reviews a completed request. The request must be completed
// with its accepted quote still accepted, reviewed at most once, and
// the caller must own it (admins may review on a client's behalf).
// The provider profile's running average is updated incrementally in
// the same transaction.
func (s *Service) Create(ctx context.Context, subject string, req transport.CreateRequest) (*repository.Review, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	requestID, err := uuid.Parse(req.RequestID)
	if err != nil {
		return nil, apperr.Validation("invalid request id")
	}

	var review *repository.Review
	var created []notifrepo.Notification

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		sr, err := s.requests.GetByIDTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if sr.ClientID != user.ID && !user.IsAdmin {
			return apperr.Forbidden("forbidden")
		}
		if sr.Status != requestrepo.StatusCompleted {
			return apperr.Conflict("request is not completed")
		}
		if sr.AcceptedQuoteID == nil {
			return apperr.Conflict("request has no accepted quote")
		}

		quote, err := s.quotes.GetByIDTx(ctx, tx, *sr.AcceptedQuoteID)
		if err != nil {
			return err
		}
		if quote.Status != quoterepo.StatusAccepted {
			return apperr.Conflict("accepted quote is no longer accepted")
		}

		exists, err := s.repo.ExistsForRequestTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("request already reviewed")
		}

		review, err = s.repo.CreateTx(ctx, tx, repository.CreateParams{
			RequestID:  requestID,
			ClientID:   sr.ClientID,
			ProviderID: quote.ProviderID,
			Rating:     req.Rating,
			Comment:    req.Comment,
		})
		if err != nil {
			return err
		}

		if err := s.providers.ApplyRatingTx(ctx, tx, quote.ProviderID, req.Rating); err != nil {
			return err
		}

		rows := notifsvc.NewReviewRow(quote.ProviderID, user.ID, requestID, review.ID,
			"New review", fmt.Sprintf("%s left a %d-star review for \"%s\"", user.FullName, req.Rating, sr.Title))
		created, err = s.notifier.DeliverTx(ctx, tx, rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(ctx, created)
	return review, nil
}

// ListForProvider returns a provider's reviews. Public.
func (s *Service) ListForProvider(ctx context.Context, providerID uuid.UUID, limit int) ([]repository.Listing, error) {
	return s.repo.ListForProvider(ctx, providerID, limit)
}

// ListMine returns the reviews the caller wrote.
func (s *Service) ListMine(ctx context.Context, subject string) ([]repository.Review, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	return s.repo.ListForClient(ctx, user.ID)
}

// ListAll returns recent reviews for admin moderation.
func (s *Service) ListAll(ctx context.Context, subject string, limit int) ([]repository.Listing, error) {
	if _, err := s.identity.RequireAdmin(ctx, subject); err != nil {
		return nil, err
	}
	return s.repo.ListAll(ctx, limit)
}

// Delete removes a review and recomputes the provider's aggregates
// from the remaining rows. Admin only. Unlike creation's incremental
// update, deletion takes the full recompute path.
func (s *Service) Delete(ctx context.Context, subject string, reviewID uuid.UUID) error {
	if _, err := s.identity.RequireAdmin(ctx, subject); err != nil {
		return err
	}

	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		review, err := s.repo.GetByIDTx(ctx, tx, reviewID)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteTx(ctx, tx, reviewID); err != nil {
			return err
		}
		return s.providers.RecomputeRatingTx(ctx, tx, review.ProviderID)
	})
}
