package service

import (
	"context"
	"fmt"
	"strings"

	identityrepo "handylink_backend/internal/identity/repository"
	"handylink_backend/platform/apperr"

	"github.com/google/uuid"
)

// OnboardResult is the hosted-onboarding redirect for a provider.
type OnboardResult struct {
	AccountID string `json:"accountId"`
	URL       string `json:"url"`
}

// StartConnectOnboarding creates the provider's Connect account on first
// call and returns a fresh onboarding link. The external account
// creation and the local write are two separate steps; if the second
// fails, the next call creates a new account and overwrites the orphan.
func (s *Service) StartConnectOnboarding(ctx context.Context, subject string) (*OnboardResult, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := identityrepo.RequireRole(user, identityrepo.RoleProvider); err != nil {
		return nil, err
	}

	accountID := ""
	if user.StripeConnectAccountID != nil {
		accountID = *user.StripeConnectAccountID
	} else {
		accountID, err = s.gateway.CreateExpressAccount(ctx, user.Email)
		if err != nil {
			return nil, err
		}
		if err := s.identity.SaveConnectAccount(ctx, user.ID, accountID); err != nil {
			return nil, err
		}
	}

	base := strings.TrimRight(s.cfg.GetAppBaseURL(), "/")
	url, err := s.gateway.CreateOnboardingLink(ctx, accountID,
		fmt.Sprintf("%s/provider/onboarding?refresh=1", base),
		fmt.Sprintf("%s/provider/onboarding?done=1", base),
	)
	if err != nil {
		return nil, err
	}

	return &OnboardResult{AccountID: accountID, URL: url}, nil
}

// SyncConnectStatus pulls the account's onboarding flags from the
// provider and stores them. Used by the frontend after the onboarding
// redirect; the account.updated webhook covers the rest.
func (s *Service) SyncConnectStatus(ctx context.Context, subject string) (*identityrepo.User, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}
	if user.StripeConnectAccountID == nil {
		return nil, apperr.Conflict("no payment account to sync")
	}

	st, err := s.gateway.GetConnectStatus(ctx, *user.StripeConnectAccountID)
	if err != nil {
		return nil, err
	}
	if err := s.applyConnectStatus(ctx, user.ID, st.ChargesEnabled, st.PayoutsEnabled, st.DetailsSubmitted); err != nil {
		return nil, err
	}
	return s.identity.GetUser(ctx, user.ID)
}

// ApplyAccountUpdate handles the account.updated webhook path, keyed by
// the Connect account id. Unknown accounts are ignored.
func (s *Service) ApplyAccountUpdate(ctx context.Context, accountID string, chargesEnabled, payoutsEnabled, detailsSubmitted bool) error {
	user, err := s.identity.FindByConnectAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if user == nil {
		s.log.Warn("account update for unknown connect account", "account_id", accountID)
		return nil
	}
	return s.applyConnectStatus(ctx, user.ID, chargesEnabled, payoutsEnabled, detailsSubmitted)
}

func (s *Service) applyConnectStatus(ctx context.Context, userID uuid.UUID, charges, payouts, details bool) error {
	return s.identity.SaveConnectStatus(ctx, userID, identityrepo.ConnectStatus{
		ChargesEnabled:   charges,
		PayoutsEnabled:   payouts,
		DetailsSubmitted: details,
	})
}
