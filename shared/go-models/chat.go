package models

import (
	"time"
)

type LastMessage struct {
	Text      string    `bson:"text" json:"text"`
	SenderID  string    `bson:"sender_id" json:"senderId"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Conversation is a 1:1 thread between a user and the support desk. Its ID
// is the user's ID.
type Conversation struct {
	ID           string           `bson:"_id" json:"id"`
	Participants []string         `bson:"participants" json:"participants"`
	UnreadCount  map[string]int64 `bson:"unread_count" json:"unreadCount"`
	LastMessage  *LastMessage     `bson:"last_message,omitempty" json:"lastMessage,omitempty"`
	CreatedAt    time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time        `bson:"updated_at" json:"updatedAt"`
}

type ChatMessage struct {
	ID             string    `bson:"_id" json:"id"`
	ConversationID string    `bson:"conversation_id" json:"conversationId"`
	SenderID       string    `bson:"sender_id" json:"senderId"`
	Text           string    `bson:"text,omitempty" json:"text,omitempty"`
	Attachments    []string  `bson:"attachments,omitempty" json:"attachments,omitempty"`
	Read           bool      `bson:"read" json:"read"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}
