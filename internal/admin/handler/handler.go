package handler

import (
	"net/http"
	"strconv"

	adminrepo "handylink_backend/internal/admin/repository"
	"handylink_backend/internal/admin/service"
	"handylink_backend/internal/admin/transport"
	requestrepo "handylink_backend/internal/requests/repository"
	"handylink_backend/platform/httpkit"
	"handylink_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles admin HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates an admin handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// RegisterClaimRoute mounts the claim endpoint on the plain protected
// group. The caller is not an admin yet when claiming.
func (h *Handler) RegisterClaimRoute(rg *gin.RouterGroup) {
	rg.POST("/admin/claim", h.ClaimAdmin)
}

// RegisterRoutes mounts the admin-gated routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.Stats)
	rg.GET("/users", h.ListUsers)
	rg.GET("/users/overview", h.UsersOverview)
	rg.POST("/users/:id/toggle-status", h.ToggleUserStatus)
	rg.POST("/providers/:id/verify", h.VerifyProvider)
	rg.GET("/requests", h.ListRequests)
	rg.GET("/reviews", h.ListReviews)
	rg.DELETE("/reviews/:id", h.DeleteReview)
}

// ClaimAdmin elevates the caller given the server-side secret.
// POST /api/v1/admin/claim
func (h *Handler) ClaimAdmin(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	var req transport.ClaimAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	err := h.service.ClaimAdmin(c.Request.Context(), ident.Subject(), req.Secret)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "ok"})
}

// Stats returns the dashboard snapshot.
// GET /api/v1/admin/stats
func (h *Handler) Stats(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), ident.Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}

// ListUsers searches the user base.
// GET /api/v1/admin/users
func (h *Handler) ListUsers(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	params := adminrepo.UserListParams{
		Query: c.Query("q"),
		Role:  c.Query("role"),
		Limit: limit,
	}

	users, err := h.service.ListUsers(c.Request.Context(), ident.Subject(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"users": users})
}

// UsersOverview returns the headline user counts.
// GET /api/v1/admin/users/overview
func (h *Handler) UsersOverview(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	overview, err := h.service.UsersOverview(c.Request.Context(), ident.Subject())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, overview)
}

// ToggleUserStatus flips a user's suspension flag.
// POST /api/v1/admin/users/:id/toggle-status
func (h *Handler) ToggleUserStatus(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	user, err := h.service.ToggleUserStatus(c.Request.Context(), ident.Subject(), userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, user)
}

// VerifyProvider sets a provider's verification flag.
// POST /api/v1/admin/providers/:id/verify
func (h *Handler) VerifyProvider(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	var req transport.VerifyProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	err = h.service.VerifyProvider(c.Request.Context(), ident.Subject(), userID, req.Verified)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "ok"})
}

// ListRequests lists requests with admin-side filters.
// GET /api/v1/admin/requests
func (h *Handler) ListRequests(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	params := requestrepo.ListParams{
		Status:       requestrepo.Status(c.Query("status")),
		CategorySlug: c.Query("category"),
		City:         c.Query("city"),
		Limit:        limit,
	}

	requests, err := h.service.ListRequests(c.Request.Context(), ident.Subject(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"requests": requests})
}

// ListReviews lists recent reviews for moderation.
// GET /api/v1/admin/reviews
func (h *Handler) ListReviews(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	reviews, err := h.service.ListReviews(c.Request.Context(), ident.Subject(), limit)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"reviews": reviews})
}

// DeleteReview removes a review.
// DELETE /api/v1/admin/reviews/:id
func (h *Handler) DeleteReview(c *gin.Context) {
	ident := httpkit.MustGetIdentity(c)
	if ident == nil {
		return
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid review id", nil)
		return
	}

	err = h.service.DeleteReview(c.Request.Context(), ident.Subject(), reviewID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "ok"})
}
