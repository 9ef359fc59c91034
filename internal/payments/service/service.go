package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	identityrepo "handylink_backend/internal/identity/repository"
	notifrepo "handylink_backend/internal/notifications/repository"
	notifsvc "handylink_backend/internal/notifications/service"
	"handylink_backend/internal/payments/gateway"
	quoterepo "handylink_backend/internal/quotes/repository"
	requestrepo "handylink_backend/internal/requests/repository"
	"handylink_backend/platform/apperr"
	"handylink_backend/platform/config"
	"handylink_backend/platform/db"
	"handylink_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Payments are settled in USD only.
const defaultCurrency = "usd"

// Quote amounts below 50 cents cannot be charged.
const minChargeCents = 50

// amountToleranceCents is the allowed drift between the charged total
// and the quote amount.
const amountToleranceCents = 2

// expiryGrace pads the scheduled expiry sweep past the session's own
// expiry so the provider's webhook usually wins.
const expiryGrace = 5 * time.Minute

// ExpiryScheduler schedules the checkout-expiry safety net. Implemented
// by the asynq-backed scheduler module.
type ExpiryScheduler interface {
	ScheduleCheckoutExpiry(ctx context.Context, requestID uuid.UUID, sessionID string, at time.Time) error
}

// RequestStore is the request persistence slice payments needs.
type RequestStore interface {
	requestrepo.Reader
	requestrepo.StatusWriter
	requestrepo.PaymentWriter
}

// QuoteStore is the quote persistence slice payments needs.
type QuoteStore interface {
	quoterepo.Reader
	quoterepo.Writer
}

// Identity resolves and updates users. Implemented by the identity
// service.
type Identity interface {
	RequireUser(ctx context.Context, subjectID string) (*identityrepo.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*identityrepo.User, error)
	FindByConnectAccount(ctx context.Context, accountID string) (*identityrepo.User, error)
	SaveConnectAccount(ctx context.Context, userID uuid.UUID, accountID string) error
	SaveConnectStatus(ctx context.Context, userID uuid.UUID, st identityrepo.ConnectStatus) error
}

// Notifier writes notification rows in the caller's transaction and
// publishes them after commit. Implemented by the notifications service.
type Notifier interface {
	DeliverTx(ctx context.Context, tx pgx.Tx, rows []notifrepo.Row) ([]notifrepo.Notification, error)
	Publish(ctx context.Context, created []notifrepo.Notification)
}

// Service implements payment reconciliation: checkout creation, the
// idempotent finalize path, and the reset/cancel path.
type Service struct {
	pool      db.Beginner
	requests  RequestStore
	quotes    QuoteStore
	identity  Identity
	notifier  Notifier
	gateway   gateway.Gateway
	cfg       config.StripeConfig
	scheduler ExpiryScheduler
	log       *logger.Logger
}

// New creates the payments service. The scheduler may be nil when
// background jobs are disabled.
func New(pool db.Beginner, requests RequestStore, quotes QuoteStore, identity Identity, notifier Notifier, gw gateway.Gateway, cfg config.StripeConfig, scheduler ExpiryScheduler, log *logger.Logger) *Service {
	return &Service{
		pool:      pool,
		requests:  requests,
		quotes:    quotes,
		identity:  identity,
		notifier:  notifier,
		gateway:   gw,
		cfg:       cfg,
		scheduler: scheduler,
		log:       log,
	}
}

// PlatformFee computes the fee in cents from the configured basis points.
func PlatformFee(amountCents, feeBps int64) int64 {
	return int64(math.Round(float64(amountCents) * float64(feeBps) / 10000))
}

// CheckoutResult is the redirect the client follows to pay.
type CheckoutResult struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateCheckout starts the two-phase payment protocol: it creates the
// external checkout session, then marks the request processing in its
// own transaction. The external call and the local write are not atomic;
// the expiry sweep and the session-id match in finalize absorb the gap.
func (s *Service) CreateCheckout(ctx context.Context, subject string, requestID, quoteID uuid.UUID) (*CheckoutResult, error) {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return nil, err
	}

	sr, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if sr.ClientID != user.ID && !user.IsAdmin {
		return nil, apperr.Forbidden("forbidden")
	}
	switch sr.PaymentStatus {
	case requestrepo.PaymentPaid:
		return nil, apperr.Conflict("request is already paid")
	case requestrepo.PaymentProcessing:
		return nil, apperr.Conflict("a payment is already in progress")
	}
	if sr.Status.Terminal() {
		return nil, apperr.Conflict("request is closed")
	}

	quote, err := s.quotes.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.RequestID != requestID {
		return nil, apperr.Validation("quote does not belong to this request")
	}
	if quote.Status != quoterepo.StatusPending {
		return nil, apperr.Conflict("quote is no longer pending")
	}
	if quote.AmountCents < minChargeCents {
		return nil, apperr.Validation("quote amount is below the minimum charge")
	}

	provider, err := s.identity.GetUser(ctx, quote.ProviderID)
	if err != nil {
		return nil, err
	}
	if provider.IsSuspended {
		return nil, apperr.Conflict("provider account is suspended")
	}
	if provider.StripeConnectAccountID == nil || !provider.StripeChargesEnabled {
		return nil, apperr.Conflict("provider has not completed payment onboarding")
	}

	fee := PlatformFee(quote.AmountCents, s.cfg.GetPlatformFeeBps())
	base := strings.TrimRight(s.cfg.GetAppBaseURL(), "/")

	sess, err := s.gateway.CreateCheckoutSession(ctx, gateway.CheckoutParams{
		AmountCents:          quote.AmountCents,
		FeeCents:             fee,
		Currency:             defaultCurrency,
		ProductName:          sr.Title,
		DestinationAccountID: *provider.StripeConnectAccountID,
		SuccessURL:           fmt.Sprintf("%s/requests/%s?session_id={CHECKOUT_SESSION_ID}", base, requestID),
		CancelURL:            fmt.Sprintf("%s/requests/%s?checkout=cancelled", base, requestID),
		Metadata: map[string]string{
			"requestId": requestID.String(),
			"quoteId":   quoteID.String(),
		},
	})
	if err != nil {
		return nil, err
	}

	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		locked, err := s.requests.GetByIDTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		switch locked.PaymentStatus {
		case requestrepo.PaymentPaid:
			return apperr.Conflict("request is already paid")
		case requestrepo.PaymentProcessing:
			return apperr.Conflict("a payment is already in progress")
		}
		return s.requests.MarkProcessingTx(ctx, tx, requestID, sess.ID, fee, quote.AmountCents-fee)
	})
	if err != nil {
		return nil, err
	}

	if s.scheduler != nil {
		if err := s.scheduler.ScheduleCheckoutExpiry(ctx, requestID, sess.ID, sess.ExpiresAt.Add(expiryGrace)); err != nil {
			s.log.Error("schedule checkout expiry failed", "request_id", requestID, "error", err)
		}
	}

	s.log.PaymentEvent("checkout_created", requestID.String(), sess.ID)
	return &CheckoutResult{SessionID: sess.ID, URL: sess.URL}, nil
}

// FinalizeParams carries the observed session state into finalize.
type FinalizeParams struct {
	SessionID       string
	RequestID       uuid.UUID
	QuoteID         uuid.UUID
	PaymentIntentID *string
	AmountTotal     *int64
	Currency        *string
}

// Finalize settles a checkout: accept the paid quote, decline its
// siblings, mark the request accepted and paid, and notify the provider.
// An already-paid request or a stale session id is a silent no-op, so
// at-least-once webhook delivery and a racing client-side sync converge
// on the same state.
func (s *Service) Finalize(ctx context.Context, p FinalizeParams) error {
	var created []notifrepo.Notification

	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		sr, err := s.requests.GetByIDTx(ctx, tx, p.RequestID)
		if err != nil {
			return err
		}
		if sr.PaymentStatus == requestrepo.PaymentPaid {
			return nil
		}
		// A cleared session id (cancel or expiry sweep) does not make a
		// paid session stale; the customer's checkout tab can outlive a
		// cancel, and the charge still happened. Only a differing stored
		// id marks the delivery as stale.
		if sr.CheckoutSessionID != nil && *sr.CheckoutSessionID != p.SessionID {
			s.log.PaymentEvent("finalize_stale_session", p.RequestID.String(), p.SessionID)
			return nil
		}

		quote, err := s.quotes.GetByIDTx(ctx, tx, p.QuoteID)
		if err != nil {
			return err
		}
		if quote.RequestID != p.RequestID {
			return apperr.Validation("quote does not belong to this request")
		}

		if p.Currency != nil && !strings.EqualFold(*p.Currency, defaultCurrency) {
			return apperr.Conflict(fmt.Sprintf("unsupported currency %q", *p.Currency))
		}
		if p.AmountTotal != nil {
			diff := *p.AmountTotal - quote.AmountCents
			if diff < -amountToleranceCents || diff > amountToleranceCents {
				return apperr.Conflict("charged amount does not match the quote")
			}
		}

		if err := s.quotes.AcceptOneDeclineRestTx(ctx, tx, p.RequestID, p.QuoteID); err != nil {
			return err
		}
		if err := s.requests.AcceptQuoteTx(ctx, tx, p.RequestID, p.QuoteID); err != nil {
			return err
		}
		if err := s.requests.MarkPaidTx(ctx, tx, p.RequestID, p.PaymentIntentID, time.Now()); err != nil {
			return err
		}

		rows := notifsvc.QuoteResponseRow(quote.ProviderID, sr.ClientID, p.RequestID, p.QuoteID,
			"Payment received", fmt.Sprintf("Your quote for \"%s\" was accepted and paid", sr.Title))
		created, err = s.notifier.DeliverTx(ctx, tx, rows)
		return err
	})
	if err != nil {
		return err
	}

	s.notifier.Publish(ctx, created)
	s.log.PaymentEvent("finalized", p.RequestID.String(), p.SessionID)
	return nil
}

// SyncCheckoutSession is the client-initiated finalize path: it reads
// the session from the provider and, when paid, runs finalize.
func (s *Service) SyncCheckoutSession(ctx context.Context, subject, sessionID string) error {
	if _, err := s.identity.RequireUser(ctx, subject); err != nil {
		return err
	}

	info, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !info.Paid {
		return nil
	}

	requestID, quoteID, err := ParseSessionMetadata(info.Metadata)
	if err != nil {
		return err
	}

	return s.Finalize(ctx, FinalizeParams{
		SessionID:       sessionID,
		RequestID:       requestID,
		QuoteID:         quoteID,
		PaymentIntentID: info.PaymentIntentID,
		AmountTotal:     info.AmountTotal,
		Currency:        info.Currency,
	})
}

// ParseSessionMetadata extracts the request and quote ids a checkout
// session was created with.
func ParseSessionMetadata(md map[string]string) (uuid.UUID, uuid.UUID, error) {
	requestID, err := uuid.Parse(md["requestId"])
	if err != nil {
		return uuid.Nil, uuid.Nil, apperr.Validation("session metadata is missing the request id")
	}
	quoteID, err := uuid.Parse(md["quoteId"])
	if err != nil {
		return uuid.Nil, uuid.Nil, apperr.Validation("session metadata is missing the quote id")
	}
	return requestID, quoteID, nil
}

// CancelCheckout explicitly abandons a processing checkout, returning
// the request to unpaid so the client can retry.
func (s *Service) CancelCheckout(ctx context.Context, subject string, requestID uuid.UUID) error {
	user, err := s.identity.RequireUser(ctx, subject)
	if err != nil {
		return err
	}

	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		sr, err := s.requests.GetByIDTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if sr.ClientID != user.ID && !user.IsAdmin {
			return apperr.Forbidden("forbidden")
		}
		switch sr.PaymentStatus {
		case requestrepo.PaymentPaid:
			return apperr.Conflict("request is already paid")
		case requestrepo.PaymentUnpaid:
			return nil
		}
		return s.requests.ResetPaymentTx(ctx, tx, requestID)
	})
}

// ResetExpired clears the payment sub-state after a checkout session
// expired. A paid request or a different stored session id is a no-op,
// which makes a late expiry webhook racing a completed payment harmless.
func (s *Service) ResetExpired(ctx context.Context, requestID uuid.UUID, sessionID string) error {
	return db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		sr, err := s.requests.GetByIDTx(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if sr.PaymentStatus != requestrepo.PaymentProcessing {
			return nil
		}
		if sessionID != "" && (sr.CheckoutSessionID == nil || *sr.CheckoutSessionID != sessionID) {
			return nil
		}

		s.log.PaymentEvent("checkout_expired_reset", requestID.String(), sessionID)
		return s.requests.ResetPaymentTx(ctx, tx, requestID)
	})
}
