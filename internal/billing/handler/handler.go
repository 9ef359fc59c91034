package handler

import (
	"net/http"

	"handylink_backend/internal/billing/service"
	"handylink_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles billing HTTP requests.
type Handler struct {
	service *service.Service
}

// New creates a billing handler.
func New(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// RegisterRoutes mounts the billing routes on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/plan", h.GetMyPlan)
	rg.POST("/checkout", h.CreateProCheckout)
}

// GetMyPlan returns the caller's billing plan.
// GET /api/v1/billing/plan
func (h *Handler) GetMyPlan(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	plan, err := h.service.GetMyPlan(c.Request.Context(), ident.Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, plan)
}

// CreateProCheckout opens a pro-plan checkout session.
// POST /api/v1/billing/checkout
func (h *Handler) CreateProCheckout(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	url, err := h.service.CreateProCheckout(c.Request.Context(), ident.Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
