package repository

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a two-party chat, optionally tied to a request. The
// last-message fields are denormalized for cheap inbox listing.
type Conversation struct {
	ID                  uuid.UUID  `json:"id"`
	RequestID           *uuid.UUID `json:"requestId,omitempty"`
	LastMessageAt       *time.Time `json:"lastMessageAt,omitempty"`
	LastMessageText     *string    `json:"lastMessageText,omitempty"`
	LastMessageSenderID *uuid.UUID `json:"lastMessageSenderId,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

// Member is one participant's bookkeeping row. UnreadCount counts
// messages sent by the other participant that this member has not read.
type Member struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversationId"`
	UserID         uuid.UUID  `json:"userId"`
	UnreadCount    int        `json:"unreadCount"`
	LastReadAt     *time.Time `json:"lastReadAt,omitempty"`
	LastTypingAt   *time.Time `json:"lastTypingAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Message is one chat message. ImageKey is an opaque stored-blob key.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	SenderID       uuid.UUID `json:"senderId"`
	Content        string    `json:"content"`
	ImageKey       *string   `json:"imageKey,omitempty"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Listing is one inbox entry: the conversation with the caller's unread
// count and the other participant's public fields.
type Listing struct {
	Conversation
	UnreadCount    int       `json:"unreadCount"`
	OtherUserID    uuid.UUID `json:"otherUserId"`
	OtherFullName  string    `json:"otherFullName"`
	OtherAvatarURL *string   `json:"otherAvatarUrl,omitempty"`
}
