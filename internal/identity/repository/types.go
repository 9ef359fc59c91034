package repository

import (
	"time"

	"handylink_backend/platform/apperr"

	"github.com/google/uuid"
)

// Role is the application role of a user.
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Plan is the billing plan of a user.
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// User is the application user record. SubjectID is the unique identifier
// assigned by the external identity provider.
type User struct {
	ID          uuid.UUID `json:"id"`
	SubjectID   string    `json:"subjectId"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	Role        Role      `json:"role"`
	IsSuspended bool      `json:"isSuspended"`
	IsAdmin     bool      `json:"isAdmin"`

	Plan            Plan       `json:"plan"`
	PlanUpdatedAt   *time.Time `json:"planUpdatedAt,omitempty"`
	PolarCustomerID *string    `json:"polarCustomerId,omitempty"`

	// Stripe Connect (providers)
	StripeConnectAccountID *string    `json:"stripeConnectAccountId,omitempty"`
	StripeChargesEnabled   bool       `json:"stripeChargesEnabled"`
	StripePayoutsEnabled   bool       `json:"stripePayoutsEnabled"`
	StripeDetailsSubmitted bool       `json:"stripeDetailsSubmitted"`
	StripeOnboardedAt      *time.Time `json:"stripeOnboardedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// RequireAdmin fails with Forbidden unless the user is an admin.
// Guards are pure functions with no side effects.
func RequireAdmin(u *User) error {
	if u == nil || !u.IsAdmin {
		return apperr.Forbidden("forbidden")
	}
	return nil
}

// RequireRole fails with Forbidden unless the user has the given role or is
// an admin. Admins may act in any role.
func RequireRole(u *User, role Role) error {
	if u == nil {
		return apperr.Forbidden("forbidden")
	}
	if u.Role != role && !u.IsAdmin {
		return apperr.Forbidden("forbidden")
	}
	return nil
}
