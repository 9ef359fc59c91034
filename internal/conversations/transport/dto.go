// Package transport defines the conversation API payloads.
package transport

// StartRequest opens (or reuses) a conversation with another user,
// optionally tied to a service request.
type StartRequest struct {
	OtherUserID string  `json:"otherUserId" validate:"required,uuid"`
	RequestID   *string `json:"requestId" validate:"omitempty,uuid"`
}

// SendMessageRequest carries a chat message. A message needs content,
// an image, or both.
type SendMessageRequest struct {
	Content  string  `json:"content" validate:"max=4000"`
	ImageKey *string `json:"imageKey" validate:"omitempty,max=512"`
}
