// Package transport defines the review API payloads.
package transport

// CreateRequest submits a review for a completed request.
type CreateRequest struct {
	RequestID string `json:"requestId" validate:"required,uuid"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"max=2000"`
}
