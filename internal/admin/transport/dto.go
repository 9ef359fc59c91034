// Package transport defines the admin API payloads.
package transport

// ClaimAdminRequest elevates the caller given the server-side secret.
type ClaimAdminRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// VerifyProviderRequest marks a provider verified or not.
type VerifyProviderRequest struct {
	Verified bool `json:"verified"`
}
