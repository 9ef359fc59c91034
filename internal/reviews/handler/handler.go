package handler

import (
	"net/http"
	"strconv"

	"handylink_backend/internal/reviews/service"
	"handylink_backend/internal/reviews/transport"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles review HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a reviews handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterRoutes mounts the authenticated review routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/mine", h.ListMine)
}

// RegisterPublicRoutes mounts the public review routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/providers/:id/reviews", h.ListForProvider)
}

// Create submits a review for a completed request.
// POST /api/v1/reviews
func (h *Handler) Create(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	var req transport.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	review, err := h.service.Create(c.Request.Context(), ident.Subject(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	c.JSON(http.StatusCreated, review)
}

// ListMine returns the reviews the caller wrote.
// GET /api/v1/reviews/mine
func (h *Handler) ListMine(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	reviews, err := h.service.ListMine(c.Request.Context(), ident.Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"reviews": reviews})
}

// ListForProvider returns a provider's reviews.
// GET /api/v1/providers/:id/reviews
func (h *Handler) ListForProvider(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid provider id", nil)
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	reviews, err := h.service.ListForProvider(c.Request.Context(), providerID, limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"reviews": reviews})
}
