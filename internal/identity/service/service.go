package service

import (
	"context"

	"handylink_backend/internal/identity/repository"
	"handylink_backend/internal/identity/transport"
	"handylink_backend/platform/apperr"

	"github.com/google/uuid"
)

// Service resolves verified subject ids to user records and enforces the
// authorization guards every operation starts with.
type Service struct {
	repo *repository.Repository
}

// New creates a new identity service.
func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Resolve maps a subject id to a user, or nil when unregistered.
func (s *Service) Resolve(ctx context.Context, subjectID string) (*repository.User, error) {
	if subjectID == "" {
		return nil, nil
	}
	return s.repo.GetBySubject(ctx, subjectID)
}

// RequireUser resolves the subject and enforces the suspension guard.
// Fails with Unauthorized when the subject maps to no user, and with
// Forbidden when the account is suspended.
func (s *Service) RequireUser(ctx context.Context, subjectID string) (*repository.User, error) {
	user, err := s.Resolve(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthorized("unauthorized")
	}
	if user.IsSuspended {
		return nil, apperr.Forbidden("account suspended")
	}
	return user, nil
}

// RequireAdmin resolves the subject and requires the admin flag.
func (s *Service) RequireAdmin(ctx context.Context, subjectID string) (*repository.User, error) {
	user, err := s.RequireUser(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if err := repository.RequireAdmin(user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser fetches a user by id. Used by other modules for enrichment.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*repository.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Register creates the user record on first authenticated call.
// Idempotent: an existing user for the subject is returned as-is.
func (s *Service) Register(ctx context.Context, subjectID string, req transport.RegisterRequest) (*repository.User, error) {
	if subjectID == "" {
		return nil, apperr.Unauthorized("unauthorized")
	}

	existing, err := s.repo.GetBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	role := repository.Role(req.Role)
	if role != repository.RoleClient && role != repository.RoleProvider {
		return nil, apperr.Validation("role must be client or provider")
	}

	return s.repo.Create(ctx, repository.CreateParams{
		SubjectID: subjectID,
		Email:     req.Email,
		FullName:  req.FullName,
		AvatarURL: req.AvatarURL,
		Role:      role,
	})
}

// UpdateMe patches the caller's own profile fields.
func (s *Service) UpdateMe(ctx context.Context, subjectID string, req transport.UpdateMeRequest) (*repository.User, error) {
	me, err := s.RequireUser(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateProfile(ctx, me.ID, req.FullName, req.AvatarURL)
}

// SaveConnectAccount is used by the payments module after creating an
// external Connect account.
func (s *Service) SaveConnectAccount(ctx context.Context, userID uuid.UUID, accountID string) error {
	return s.repo.SaveConnectAccount(ctx, userID, accountID)
}

// SaveConnectStatus persists the provider-reported onboarding flags.
func (s *Service) SaveConnectStatus(ctx context.Context, userID uuid.UUID, st repository.ConnectStatus) error {
	return s.repo.SaveConnectStatus(ctx, userID, st)
}

// FindByConnectAccount resolves a Stripe Connect account id to its user,
// or nil when unknown.
func (s *Service) FindByConnectAccount(ctx context.Context, accountID string) (*repository.User, error) {
	return s.repo.GetByConnectAccountID(ctx, accountID)
}

// ApplyPlanBySubject is used by the billing webhook to set the user's plan.
func (s *Service) ApplyPlanBySubject(ctx context.Context, subjectID string, plan repository.Plan, polarCustomerID *string) (bool, error) {
	return s.repo.ApplyPlanBySubject(ctx, subjectID, plan, polarCustomerID)
}

// GrantAdmin promotes the user; callers must have verified the claim secret.
func (s *Service) GrantAdmin(ctx context.Context, userID uuid.UUID) error {
	return s.repo.GrantAdmin(ctx, userID)
}
