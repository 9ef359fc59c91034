// Package gateway wraps the Stripe API behind a narrow interface so the
// payment service stays testable without network access.
package gateway

import (
	"context"
	"fmt"
	"time"

	"handylink_backend/platform/apperr"
	"handylink_backend/platform/config"

	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/account"
	"github.com/stripe/stripe-go/v81/accountlink"
	"github.com/stripe/stripe-go/v81/checkout/session"
)

// ConnectStatus mirrors the onboarding flags of a Connect account.
type ConnectStatus struct {
	ChargesEnabled   bool
	PayoutsEnabled   bool
	DetailsSubmitted bool
}

// CheckoutParams describes a destination-charge checkout session.
type CheckoutParams struct {
	AmountCents          int64
	FeeCents             int64
	Currency             string
	ProductName          string
	DestinationAccountID string
	SuccessURL           string
	CancelURL            string
	Metadata             map[string]string
}

// CheckoutSession is the created session's identity and redirect URL.
type CheckoutSession struct {
	ID        string
	URL       string
	ExpiresAt time.Time
}

// SessionInfo is the state of an existing checkout session.
type SessionInfo struct {
	ID              string
	Paid            bool
	PaymentIntentID *string
	AmountTotal     *int64
	Currency        *string
	Metadata        map[string]string
}

// Gateway is the outbound payment-provider surface the service consumes.
type Gateway interface {
	CreateExpressAccount(ctx context.Context, email string) (string, error)
	CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	GetConnectStatus(ctx context.Context, accountID string) (ConnectStatus, error)
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (SessionInfo, error)
}

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	enabled bool
}

// New configures the Stripe SDK and returns the gateway. A missing
// secret key leaves the gateway disabled; every call then fails with a
// configuration error instead of a confusing upstream one.
func New(cfg config.StripeConfig) *StripeGateway {
	if !cfg.IsStripeEnabled() {
		return &StripeGateway{}
	}
	stripe.Key = cfg.GetStripeSecretKey()
	return &StripeGateway{enabled: true}
}

func (g *StripeGateway) guard() error {
	if !g.enabled {
		return apperr.Internal("stripe is not configured")
	}
	return nil
}

// CreateExpressAccount creates a Connect Express account for a provider.
func (g *StripeGateway) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	if err := g.guard(); err != nil {
		return "", err
	}

	params := &stripe.AccountParams{
		Type:  stripe.String(string(stripe.AccountTypeExpress)),
		Email: stripe.String(email),
	}
	params.Context = ctx

	acct, err := account.New(params)
	if err != nil {
		return "", apperr.Upstream(fmt.Sprintf("create connect account failed: %v", err))
	}
	return acct.ID, nil
}

// CreateOnboardingLink returns a fresh hosted-onboarding URL.
func (g *StripeGateway) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	if err := g.guard(); err != nil {
		return "", err
	}

	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}
	params.Context = ctx

	link, err := accountlink.New(params)
	if err != nil {
		return "", apperr.Upstream(fmt.Sprintf("create onboarding link failed: %v", err))
	}
	return link.URL, nil
}

// GetConnectStatus reads the account's current onboarding flags.
func (g *StripeGateway) GetConnectStatus(ctx context.Context, accountID string) (ConnectStatus, error) {
	if err := g.guard(); err != nil {
		return ConnectStatus{}, err
	}

	params := &stripe.AccountParams{}
	params.Context = ctx

	acct, err := account.GetByID(accountID, params)
	if err != nil {
		return ConnectStatus{}, apperr.Upstream(fmt.Sprintf("fetch connect account failed: %v", err))
	}
	return ConnectStatus{
		ChargesEnabled:   acct.ChargesEnabled,
		PayoutsEnabled:   acct.PayoutsEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
	}, nil
}

// CreateCheckoutSession creates a destination-charge checkout session
// with the platform fee applied.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (CheckoutSession, error) {
	if err := g.guard(); err != nil {
		return CheckoutSession{}, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(p.Currency),
				UnitAmount: stripe.Int64(p.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(p.ProductName),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(p.FeeCents),
			TransferData: &stripe.CheckoutSessionPaymentIntentDataTransferDataParams{
				Destination: stripe.String(p.DestinationAccountID),
			},
		},
	}
	params.Context = ctx
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		return CheckoutSession{}, apperr.Upstream(fmt.Sprintf("create checkout session failed: %v", err))
	}
	return CheckoutSession{
		ID:        sess.ID,
		URL:       sess.URL,
		ExpiresAt: time.Unix(sess.ExpiresAt, 0),
	}, nil
}

// GetCheckoutSession reads an existing session's payment state.
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, sessionID string) (SessionInfo, error) {
	if err := g.guard(); err != nil {
		return SessionInfo{}, err
	}

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(sessionID, params)
	if err != nil {
		return SessionInfo{}, apperr.Upstream(fmt.Sprintf("fetch checkout session failed: %v", err))
	}

	info := SessionInfo{
		ID:       sess.ID,
		Paid:     sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		Metadata: sess.Metadata,
	}
	if sess.PaymentIntent != nil {
		info.PaymentIntentID = &sess.PaymentIntent.ID
	}
	if sess.AmountTotal != 0 {
		amount := sess.AmountTotal
		info.AmountTotal = &amount
	}
	if sess.Currency != "" {
		currency := string(sess.Currency)
		info.Currency = &currency
	}
	return info, nil
}

var _ Gateway = (*StripeGateway)(nil)
