package handler

import (
	"net/http"
	"strconv"

	"handylink_backend/internal/providers/repository"
	"handylink_backend/internal/providers/service"
	"handylink_backend/internal/providers/transport"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles provider profile HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a providers handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterPublicRoutes mounts the public directory routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/providers", h.List)
	rg.GET("/providers/:id", h.Get)
}

// RegisterRoutes mounts the authenticated profile routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.GetMyProfile)
	rg.PUT("/me", h.UpsertMyProfile)
	rg.POST("/me/portfolio", h.AddPortfolioImage)
}

// List returns the provider directory.
// GET /api/v1/providers
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	params := repository.ListParams{
		Query:         c.Query("q"),
		City:          c.Query("city"),
		Category:      c.Query("category"),
		OnlyAvailable: c.Query("available") == "true",
		OnlyVerified:  c.Query("verified") == "true",
		Sort:          c.Query("sort"),
		Limit:         limit,
	}

	items, err := h.service.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"providers": items})
}

// Get returns a provider's public page.
// GET /api/v1/providers/:id
func (h *Handler) Get(c *gin.Context) {
	providerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid provider id", nil)
		return
	}

	profile, err := h.service.Get(c.Request.Context(), providerID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, profile)
}

// GetMyProfile returns the calling provider's profile.
// GET /api/v1/provider-profile/me
func (h *Handler) GetMyProfile(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	profile, err := h.service.GetMyProfile(c.Request.Context(), ident.Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, profile)
}

// UpsertMyProfile creates or updates the caller's profile.
// PUT /api/v1/provider-profile/me
func (h *Handler) UpsertMyProfile(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	var req transport.UpsertProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	profile, err := h.service.UpsertMyProfile(c.Request.Context(), ident.Subject(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, profile)
}

// AddPortfolioImage appends a stored-image key to the caller's profile.
// POST /api/v1/provider-profile/me/portfolio
func (h *Handler) AddPortfolioImage(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	var req transport.AddPortfolioImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	profile, err := h.service.AddPortfolioImage(c.Request.Context(), ident.Subject(), req.ImageKey)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, profile)
}
