package service

import (
	"context"
	"math"

	identityrepo "handylink_backend/internal/identity/repository"
	identitysvc "handylink_backend/internal/identity/service"
	"handylink_backend/internal/providers/repository"
	"handylink_backend/internal/providers/transport"
	reviewrepo "handylink_backend/internal/reviews/repository"
	"handylink_backend/platform/apperr"

	"github.com/google/uuid"
)

// recentReviewLimit bounds the reviews embedded in a public profile.
const recentReviewLimit = 10

// Service implements the provider directory and profile management.
type Service struct {
	repo     *repository.Repository
	reviews  *reviewrepo.Repository
	identity *identitysvc.Service
}

// New creates the providers service.
func New(repo *repository.Repository, reviews *reviewrepo.Repository, identity *identitysvc.Service) *Service {
	return &Service{repo: repo, reviews: reviews, identity: identity}
}

// PublicProfile is a provider's public page: profile, user fields and
// recent reviews.
type PublicProfile struct {
	repository.Profile
	FullName      string              `json:"fullName"`
	AvatarURL     *string             `json:"avatarUrl,omitempty"`
	RecentReviews []reviewrepo.Listing `json:"recentReviews"`
}

// UpsertMyProfile creates or updates the calling provider's profile.
// Verification and rating aggregates are never caller-editable.
func (s *Service) UpsertMyProfile(ctx context.Context, subject string, req transport.UpsertProfileRequest) (*repository.Profile, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := identityrepo.RequireRole(user, identityrepo.RoleProvider); err != nil {
		return nil, err
	}
	if req.HourlyRateMin != nil && req.HourlyRateMax != nil && *req.HourlyRateMax < *req.HourlyRateMin {
		return nil, apperr.Validation("maximum rate is below minimum rate")
	}

	return s.repo.Upsert(ctx, repository.UpsertParams{
		UserID:          user.ID,
		Bio:             req.Bio,
		Categories:      req.Categories,
		ServiceAreas:    req.ServiceAreas,
		PortfolioImages: req.PortfolioImages,

		HourlyRateMinCents: dollarsToCents(req.HourlyRateMin),
		HourlyRateMaxCents: dollarsToCents(req.HourlyRateMax),
		YearsExperience:    req.YearsExperience,
		IsAvailable:        req.IsAvailable,

		Lat:     req.Lat,
		Lng:     req.Lng,
		Address: req.Address,
		City:    req.City,
	})
}

// GetMyProfile returns the calling provider's profile, or NotFound
// when none exists yet.
func (s *Service) GetMyProfile(ctx context.Context, subject string) (*repository.Profile, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	profile, err := s.repo.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.NotFound("profile not found")
	}
	return profile, nil
}

// AddPortfolioImage appends a stored-image key to the caller's profile.
func (s *Service) AddPortfolioImage(ctx context.Context, subject string, imageKey string) (*repository.Profile, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := identityrepo.RequireRole(user, identityrepo.RoleProvider); err != nil {
		return nil, err
	}
	return s.repo.AddPortfolioImage(ctx, user.ID, imageKey)
}

// Get returns a provider's public page. Public.
func (s *Service) Get(ctx context.Context, providerID uuid.UUID) (*PublicProfile, error) {
	user, err := s.identity.GetUser(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if user.IsSuspended {
		return nil, apperr.NotFound("provider not found")
	}

	profile, err := s.repo.GetByUserID(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.NotFound("provider not found")
	}

	reviews, err := s.reviews.ListForProvider(ctx, providerID, recentReviewLimit)
	if err != nil {
		return nil, err
	}

	return &PublicProfile{
		Profile:       *profile,
		FullName:      user.FullName,
		AvatarURL:     user.AvatarURL,
		RecentReviews: reviews,
	}, nil
}

// List returns the provider directory. Public.
func (s *Service) List(ctx context.Context, p repository.ListParams) ([]repository.Listing, error) {
	return s.repo.List(ctx, p)
}

func dollarsToCents(v *float64) *int64 {
	if v == nil {
		return nil
	}
	cents := int64(math.Round(*v * 100))
	return &cents
}
