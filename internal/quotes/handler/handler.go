package handler

import (
	"net/http"

	"handylink_backend/internal/quotes/service"
	"handylink_backend/internal/quotes/transport"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles quote HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a quotes handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterRoutes mounts the quote routes on the protected group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Submit)
	rg.GET("/mine", h.ListMine)
	rg.POST("/:id/respond", h.Respond)
}

// Submit creates a quote on a request.
// POST /api/v1/quotes
func (h *Handler) Submit(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	var req transport.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	quote, err := h.service.Submit(c.Request.Context(), ident.Subject(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, quote)
}

// ListMine returns the calling provider's quotes.
// GET /api/v1/quotes/mine
func (h *Handler) ListMine(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	quotes, err := h.service.ListMine(c.Request.Context(), ident.Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"quotes": quotes})
}

// Respond accepts or declines a quote.
// POST /api/v1/quotes/:id/respond
func (h *Handler) Respond(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid quote id", nil)
		return
	}

	var req transport.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	quote, err := h.service.Respond(c.Request.Context(), ident.Subject(), quoteID, req.Action)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, quote)
}
