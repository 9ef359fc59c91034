package service

import (
	"context"
	"crypto/subtle"

	"handylink_backend/internal/admin/repository"
	identityrepo "handylink_backend/internal/identity/repository"
	identitysvc "handylink_backend/internal/identity/service"
	providerrepo "handylink_backend/internal/providers/repository"
	requestrepo "handylink_backend/internal/requests/repository"
	reviewrepo "handylink_backend/internal/reviews/repository"
	reviewsvc "handylink_backend/internal/reviews/service"
	"handylink_backend/platform/apperr"
	"handylink_backend/platform/config"

	"github.com/google/uuid"
)

// Service implements the admin moderation surface.
type Service struct {
	repo      *repository.Repository
	users     *identityrepo.Repository
	requests  *requestrepo.Repository
	providers *providerrepo.Repository
	reviews   *reviewsvc.Service
	identity  *identitysvc.Service
	cfg       config.AdminConfig
}

// New creates the admin service.
func New(repo *repository.Repository, users *identityrepo.Repository, requests *requestrepo.Repository, providers *providerrepo.Repository, reviews *reviewsvc.Service, identity *identitysvc.Service, cfg config.AdminConfig) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		requests:  requests,
		providers: providers,
		reviews:   reviews,
		identity:  identity,
		cfg:       cfg,
	}
}

// ClaimAdmin elevates the caller when the supplied secret matches the
// server-side claim secret. An unset secret disables claiming.
func (s *Service) ClaimAdmin(ctx context.Context, subject, secret string) error {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return err
	}

	want := s.cfg.GetAdminClaimSecret()
	if want == "" {
		return apperr.Internal("admin claim is not configured")
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(want)) != 1 {
		return apperr.Forbidden("invalid claim secret")
	}
	if user.IsAdmin {
		return nil
	}
	return s.identity.GrantAdmin(ctx, user.ID)
}

// Stats returns the dashboard snapshot.
func (s *Service) Stats(ctx context.Context, subject string) (*repository.Stats, error) {
	if _, err := s.identity.RequireAdmin(ctx, subject); err != nil {
		return nil, err
	}
	return s.repo.Stats(ctx)
}

// ListUsers searches the user base.
func (s *Service) ListUsers(ctx context.Context, subject string, p repository.UserListParams) ([]repository.UserRow, error) {
	if _, err := s.identity.RequireAdmin(ctx, subject); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx, p)
}

// UsersOverview returns the headline user counts.
func (s *Service) UsersOverview(ctx context.Context, subject string) (*repository.UsersOverview, error) {
	if _, err := s.identity.RequireAdmin(ctx, subject); err != nil {
		return nil, err
	}
	return s.repo.UsersOverview(ctx)
}

// ToggleUserStatus flips a user's suspension flag. Admins cannot
// suspend themselves.
func (s *Service) ToggleUserStatus(ctx context.Context, subject string, userID uuid.UUID) (*identityrepo.User, error) {
	admin, err := s.identity.RequireAdmin(ctx, subject)
	if err != nil {
		return nil, err
	}
	if admin.ID == userID {
		return nil, apperr.Conflict("cannot suspend your own account")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetSuspended(ctx, userID, !user.IsSuspended); err != nil {
		return nil, err
	}
	user.IsSuspended = !user.IsSuspended
	return user, nil
}

// VerifyProvider sets a provider profile's verification flag.
func (s *Service) VerifyProvider(ctx context.Context, subject string, userID uuid.UUID, verified bool) error {
	if _, err := s.identity.RequireAdmin(ctx, subject); err != nil {
		return err
	}

	profile, err := s.providers.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return apperr.NotFound("provider profile not found")
	}
	return s.providers.SetVerified(ctx, userID, verified)
}

// ListRequests lists requests with admin-side filters.
func (s *Service) ListRequests(ctx context.Context, subject string, p requestrepo.ListParams) ([]requestrepo.ServiceRequest, error) {
	if _, err := s.identity.RequireAdmin(ctx, subject); err != nil {
		return nil, err
	}
	return s.requests.List(ctx, p)
}

// ListReviews lists recent reviews for moderation.
func (s *Service) ListReviews(ctx context.Context, subject string, limit int) ([]reviewrepo.Listing, error) {
	return s.reviews.ListAll(ctx, subject, limit)
}

// DeleteReview removes a review and recomputes the provider's rating.
func (s *Service) DeleteReview(ctx context.Context, subject string, reviewID uuid.UUID) error {
	return s.reviews.Delete(ctx, subject, reviewID)
}
