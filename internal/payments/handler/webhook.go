package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"handylink_backend/internal/payments/service"
	"handylink_backend/platform/apperr"
	"handylink_backend/platform/config"
	"handylink_backend/platform/logger"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

// WebhookHandler handles inbound Stripe webhook events. It verifies the
// signature before touching any state and answers 200 for events it has
// nothing to do with, so Stripe only redelivers on transport or
// signature failures.
type WebhookHandler struct {
	service *service.Service
	cfg     config.StripeConfig
	log     *logger.Logger
}

// NewWebhookHandler creates the Stripe webhook handler.
func NewWebhookHandler(svc *service.Service, cfg config.StripeConfig, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: svc, cfg: cfg, log: log}
}

// Handle processes POST /stripe/webhook.
func (h *WebhookHandler) Handle(c *gin.Context) {
	secret := h.cfg.GetStripeWebhookSecret()
	if secret == "" {
		h.log.Error("stripe webhook secret not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
	if err != nil {
		h.log.Warn("stripe webhook signature verification failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	h.log.WebhookEvent("stripe", string(event.Type), event.ID)

	switch event.Type {
	case "checkout.session.completed":
		err = h.handleCheckoutCompleted(c, event)
	case "checkout.session.expired":
		err = h.handleCheckoutExpired(c, event)
	case "account.updated":
		err = h.handleAccountUpdated(c, event)
	}

	if err != nil {
		// Business-rule rejections are acknowledged so Stripe does not
		// retry them forever; only internal failures ask for redelivery.
		var domainErr *apperr.Error
		if errors.As(err, &domainErr) && domainErr.Kind != apperr.KindInternal {
			h.log.Warn("stripe webhook event rejected", "type", event.Type, "error", err)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		h.log.Error("stripe webhook event failed", "type", event.Type, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) handleCheckoutCompleted(c *gin.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return apperr.Validation("malformed checkout session payload")
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil
	}

	params, err := finalizeParamsFromSession(&sess)
	if err != nil {
		return err
	}
	return h.service.Finalize(c.Request.Context(), *params)
}

func (h *WebhookHandler) handleCheckoutExpired(c *gin.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return apperr.Validation("malformed checkout session payload")
	}

	requestID, _, err := service.ParseSessionMetadata(sess.Metadata)
	if err != nil {
		return err
	}
	return h.service.ResetExpired(c.Request.Context(), requestID, sess.ID)
}

func (h *WebhookHandler) handleAccountUpdated(c *gin.Context, event stripe.Event) error {
	var acct stripe.Account
	if err := json.Unmarshal(event.Data.Raw, &acct); err != nil {
		return apperr.Validation("malformed account payload")
	}
	return h.service.ApplyAccountUpdate(c.Request.Context(), acct.ID,
		acct.ChargesEnabled, acct.PayoutsEnabled, acct.DetailsSubmitted)
}

func finalizeParamsFromSession(sess *stripe.CheckoutSession) (*service.FinalizeParams, error) {
	requestID, quoteID, err := service.ParseSessionMetadata(sess.Metadata)
	if err != nil {
		return nil, err
	}

	p := service.FinalizeParams{
		SessionID: sess.ID,
		RequestID: requestID,
		QuoteID:   quoteID,
	}
	if sess.PaymentIntent != nil {
		p.PaymentIntentID = &sess.PaymentIntent.ID
	}
	if sess.AmountTotal != 0 {
		amount := sess.AmountTotal
		p.AmountTotal = &amount
	}
	if sess.Currency != "" {
		currency := string(sess.Currency)
		p.Currency = &currency
	}
	return &p, nil
}
