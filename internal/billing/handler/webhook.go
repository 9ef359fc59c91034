package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"handylink_backend/internal/billing/service"
	"handylink_backend/internal/billing/webhook"
	"handylink_backend/platform/apperr"
	"handylink_backend/platform/config"
	"handylink_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// WebhookHandler handles inbound Polar webhook events. The signature
// is verified before any state is touched, and events the service has
// nothing to do with are acknowledged so Polar only redelivers on
// transport or signature failures.
type WebhookHandler struct {
	service *service.Service
	cfg     config.PolarConfig
	log     *logger.Logger
}

// NewWebhookHandler creates the Polar webhook handler.
func NewWebhookHandler(svc *service.Service, cfg config.PolarConfig, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: svc, cfg: cfg, log: log}
}

type event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type customerState struct {
	ID                  string `json:"id"`
	ExternalID          string `json:"external_id"`
	ActiveSubscriptions []struct {
		ProductID string `json:"product_id"`
		Status    string `json:"status"`
	} `json:"active_subscriptions"`
}

// Handle processes POST /polar/webhook.
func (h *WebhookHandler) Handle(c *gin.Context) {
	secret := h.cfg.GetPolarWebhookSecret()
	if secret == "" {
		h.log.Error("polar webhook secret not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	err = webhook.Verify(secret,
		c.GetHeader("webhook-id"),
		c.GetHeader("webhook-timestamp"),
		c.GetHeader("webhook-signature"),
		payload)
	if err != nil {
		h.log.Warn("polar webhook signature verification failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	var ev event
	if err := json.Unmarshal(payload, &ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	h.log.WebhookEvent("polar", ev.Type, c.GetHeader("webhook-id"))

	switch ev.Type {
	case "customer.state_changed":
		err = h.handleCustomerState(c, ev.Data)
	}

	if err != nil {
		var domainErr *apperr.Error
		if errors.As(err, &domainErr) && domainErr.Kind != apperr.KindInternal {
			h.log.Warn("polar webhook event rejected", "type", ev.Type, "error", err)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		h.log.Error("polar webhook event failed", "type", ev.Type, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *WebhookHandler) handleCustomerState(c *gin.Context, data json.RawMessage) error {
	var state customerState
	if err := json.Unmarshal(data, &state); err != nil {
		return apperr.Validation("malformed customer state payload")
	}

	proProduct := h.service.ProProductID()
	hasActivePro := false
	for _, sub := range state.ActiveSubscriptions {
		if sub.ProductID == proProduct && sub.Status == "active" {
			hasActivePro = true
			break
		}
	}

	return h.service.ApplyCustomerState(c.Request.Context(), state.ExternalID, state.ID, hasActivePro)
}
