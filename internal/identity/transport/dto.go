// Package transport defines request/response DTOs for the identity module.
package transport

// RegisterRequest is the body for first-call registration.
type RegisterRequest struct {
	Role      string  `json:"role" validate:"required,oneof=client provider"`
	Email     string  `json:"email" validate:"required,email,max=320"`
	FullName  string  `json:"fullName" validate:"required,min=1,max=200"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url,max=2000"`
}

// UpdateMeRequest patches the caller's own profile.
type UpdateMeRequest struct {
	FullName  *string `json:"fullName" validate:"omitempty,min=1,max=200"`
	AvatarURL *string `json:"avatarUrl" validate:"omitempty,url,max=2000"`
}
