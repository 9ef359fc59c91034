// Package repository persists reviews.
package repository

import (
	"time"

	"github.com/google/uuid"
)

// Review is one client's rating of a completed request's provider.
type Review struct {
	ID         uuid.UUID `json:"id"`
	RequestID  uuid.UUID `json:"requestId"`
	ClientID   uuid.UUID `json:"clientId"`
	ProviderID uuid.UUID `json:"providerId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Listing is a review with the reviewer's public fields, for the
// provider's public review page.
type Listing struct {
	Review
	ClientFullName  string  `json:"clientFullName"`
	ClientAvatarURL *string `json:"clientAvatarUrl,omitempty"`
}

// CreateParams carries a new review row.
type CreateParams struct {
	RequestID  uuid.UUID
	ClientID   uuid.UUID
	ProviderID uuid.UUID
	Rating     int
	Comment    string
}
