package models

import (
	"time"
)

const (
	NotificationKindSavedSearch = "saved_search_match"
	NotificationKindPriceDrop   = "price_drop"
	NotificationKindAppointment = "appointment"
	NotificationKindSystem      = "system"
)

// MaxNotificationsListed caps GET /api/notifications.
const MaxNotificationsListed = 50

// Notification is an in-app message shown in the user's bell menu.
type Notification struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"-"`
	Kind      string    `bson:"kind" json:"type"`
	Title     string    `bson:"title" json:"title"`
	Message   string    `bson:"message" json:"message"`
	Link      string    `bson:"link,omitempty" json:"link,omitempty"`
	Read      bool      `bson:"read" json:"read"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
