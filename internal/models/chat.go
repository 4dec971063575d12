package models

import (
	"time"

	"hoyhub/backend/internal/utils"
)

// Channel is a 1:1 conversation between two participants, optionally scoped
// to a listing. The document ID is the deterministic channel ID, so opening
// the same conversation from either side converges on one document.
type Channel struct {
	ChannelID        string            `bson:"_id" json:"channel_id"`
	ParticipantIDs   []string          `bson:"participant_ids" json:"participant_ids"` // sorted
	ParticipantNames map[string]string `bson:"participant_names,omitempty" json:"participant_names,omitempty"`
	ContextID        string            `bson:"context_id" json:"context_id"` // listing ID or "general"
	LastMessage      string            `bson:"last_message,omitempty" json:"last_message,omitempty"`
	LastMessageAt    time.Time         `bson:"last_message_at" json:"last_message_at"`
	CreatedAt        time.Time         `bson:"created_at" json:"created_at"`
}

// Message is one entry in a channel's message log. The log is the source of
// truth; the channel's preview fields are a best-effort second write.
type Message struct {
	Base      `bson:",inline"`
	ChannelID string    `bson:"channel_id" json:"channel_id"`
	SenderID  string    `bson:"sender_id" json:"sender_id"`
	Text      string    `bson:"text" json:"text"`
	SentAt    time.Time `bson:"sent_at" json:"sent_at"` // server-assigned
}

// Notification is an in-app notification for a user.
type Notification struct {
	Base      `bson:",inline"`
	UserID    utils.SixID `bson:"user_id" json:"user_id"`
	Title     string      `bson:"title" json:"title"`
	Body      string      `bson:"body" json:"body"`
	Read      bool        `bson:"read" json:"read"`
	CreatedAt time.Time   `bson:"created_at" json:"created_at"`
}
