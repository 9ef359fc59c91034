package service

import (
	"context"
	"time"

	"handylink_backend/internal/billing/client"
	identityrepo "handylink_backend/internal/identity/repository"
	identitysvc "handylink_backend/internal/identity/service"
	"handylink_backend/platform/apperr"
	"handylink_backend/platform/config"
	"handylink_backend/platform/logger"
)

// Service implements subscription billing: plan lookup, pro checkout
// and webhook-driven plan reconciliation.
type Service struct {
	polar    *client.Client
	identity *identitysvc.Service
	cfg      config.PolarConfig
	log      *logger.Logger
}

// New creates the billing service.
func New(polar *client.Client, identity *identitysvc.Service, cfg config.PolarConfig, log *logger.Logger) *Service {
	return &Service{polar: polar, identity: identity, cfg: cfg, log: log}
}

// PlanInfo is the caller's current plan.
type PlanInfo struct {
	Plan          identityrepo.Plan `json:"plan"`
	PlanUpdatedAt *time.Time        `json:"planUpdatedAt,omitempty"`
}

// GetMyPlan returns the caller's billing plan.
func (s *Service) GetMyPlan(ctx context.Context, subject string) (*PlanInfo, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	return &PlanInfo{Plan: user.Plan, PlanUpdatedAt: user.PlanUpdatedAt}, nil
}

// CreateProCheckout opens a hosted checkout session for the pro plan
// and returns its redirect URL. The user's subject id rides along as
// the external customer id so the webhook can map the purchase back.
func (s *Service) CreateProCheckout(ctx context.Context, subject string) (string, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return "", err
	}
	if s.cfg.GetPolarAccessToken() == "" || s.cfg.GetPolarProProductID() == "" {
		return "", apperr.Internal("billing is not configured")
	}
	if user.Plan == identityrepo.PlanPro {
		return "", apperr.Conflict("already on the pro plan")
	}

	checkout, err := s.polar.CreateCheckout(ctx, client.CheckoutParams{
		ProductID:          s.cfg.GetPolarProProductID(),
		CustomerExternalID: user.SubjectID,
		CustomerEmail:      user.Email,
		SuccessURL:         s.cfg.GetAppBaseURL() + "/billing/success",
	})
	if err != nil {
		return "", err
	}
	return checkout.URL, nil
}

// ApplyCustomerState reconciles a customer-state webhook event: an
// active pro subscription grants the pro plan, none reverts to free.
// Unknown external ids are logged and acknowledged, not retried.
func (s *Service) ApplyCustomerState(ctx context.Context, externalID, customerID string, hasActivePro bool) error {
	if externalID == "" {
		s.log.Warn("polar customer state without external id", "customer_id", customerID)
		return nil
	}

	plan := identityrepo.PlanFree
	if hasActivePro {
		plan = identityrepo.PlanPro
	}

	var polarCustomerID *string
	if customerID != "" {
		polarCustomerID = &customerID
	}

	applied, err := s.identity.ApplyPlanBySubject(ctx, externalID, plan, polarCustomerID)
	if err != nil {
		return err
	}
	if !applied {
		s.log.Warn("polar customer state for unknown subject", "external_id", externalID)
		return nil
	}

	s.log.Info("billing plan applied", "external_id", externalID, "plan", string(plan))
	return nil
}

// ProProductID exposes the configured pro product for webhook matching.
func (s *Service) ProProductID() string {
	return s.cfg.GetPolarProProductID()
}
