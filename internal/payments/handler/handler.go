package handler

import (
	"net/http"

	"handylink_backend/internal/payments/service"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles payment HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a payments handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterRoutes mounts the payment routes on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/connect/onboard", h.ConnectOnboard)
	rg.POST("/connect/sync", h.ConnectSync)
	rg.POST("/checkout", h.CreateCheckout)
	rg.POST("/checkout/sync", h.SyncCheckout)
	rg.POST("/checkout/cancel", h.CancelCheckout)
}

// ConnectOnboard starts or resumes Stripe Connect onboarding.
// POST /api/v1/payments/connect/onboard
func (h *Handler) ConnectOnboard(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	result, err := h.service.StartConnectOnboarding(c.Request.Context(), ident.Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// ConnectSync refreshes the caller's Connect onboarding flags.
// POST /api/v1/payments/connect/sync
func (h *Handler) ConnectSync(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	user, err := h.service.SyncConnectStatus(c.Request.Context(), ident.Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, user)
}

type checkoutRequest struct {
	RequestID string `json:"requestId" validate:"required,uuid"`
	QuoteID   string `json:"quoteId" validate:"required,uuid"`
}

// CreateCheckout starts a checkout session for a quote.
// POST /api/v1/payments/checkout
func (h *Handler) CreateCheckout(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	requestID, _ := uuid.Parse(req.RequestID)
	quoteID, _ := uuid.Parse(req.QuoteID)

	result, err := h.service.CreateCheckout(c.Request.Context(), ident.Subject(), requestID, quoteID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

type syncCheckoutRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// SyncCheckout reconciles a session after the client returns from
// checkout. Safe to race the webhook.
// POST /api/v1/payments/checkout/sync
func (h *Handler) SyncCheckout(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	var req syncCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	if err := h.service.SyncCheckoutSession(c.Request.Context(), ident.Subject(), req.SessionID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"success": true})
}

type cancelCheckoutRequest struct {
	RequestID string `json:"requestId" validate:"required,uuid"`
}

// CancelCheckout abandons a processing checkout.
// POST /api/v1/payments/checkout/cancel
func (h *Handler) CancelCheckout(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	var req cancelCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	requestID, _ := uuid.Parse(req.RequestID)
	if err := h.service.CancelCheckout(c.Request.Context(), ident.Subject(), requestID); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"success": true})
}
