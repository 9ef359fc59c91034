package repository

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a quote.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// Quote is a provider's offer on a service request. A provider submits
// at most one quote per request.
type Quote struct {
	ID                uuid.UUID `json:"id"`
	RequestID         uuid.UUID `json:"requestId"`
	ProviderID        uuid.UUID `json:"providerId"`
	AmountCents       int64     `json:"amountCents"`
	Message           string    `json:"message"`
	EstimatedDuration *string   `json:"estimatedDuration,omitempty"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// CreateParams carries the fields of a new quote.
type CreateParams struct {
	RequestID         uuid.UUID
	ProviderID        uuid.UUID
	AmountCents       int64
	Message           string
	EstimatedDuration *string
}
