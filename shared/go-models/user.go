package models

import (
	"time"
)

// NotificationPreferences gate which channels may reach a user.
type NotificationPreferences struct {
	Email     bool `bson:"email" json:"email"`
	Push      bool `bson:"push" json:"push"`
	Marketing bool `bson:"marketing" json:"marketing"`
	Security  bool `bson:"security" json:"security"`
}

func DefaultNotificationPreferences() NotificationPreferences {
	return NotificationPreferences{Email: true, Push: true, Marketing: false, Security: true}
}

// User mirrors an identity-provider account. ID is the token subject.
type User struct {
	ID          string                   `bson:"_id" json:"id"`
	Email       string                   `bson:"email,omitempty" json:"email,omitempty"`
	Name        string                   `bson:"name,omitempty" json:"name,omitempty"`
	Picture     string                   `bson:"picture,omitempty" json:"picture,omitempty"`
	Phone       string                   `bson:"phone,omitempty" json:"phone,omitempty"`
	Role        string                   `bson:"role" json:"role"`
	Preferences *NotificationPreferences `bson:"notification_preferences,omitempty" json:"-"`
	CreatedAt   time.Time                `bson:"created_at" json:"createdAt"`
	LastLogin   time.Time                `bson:"last_login" json:"lastLogin"`
}

// EffectivePreferences falls back to the defaults for users who never
// saved any.
func (u *User) EffectivePreferences() NotificationPreferences {
	if u == nil || u.Preferences == nil {
		return DefaultNotificationPreferences()
	}
	return *u.Preferences
}
