package models

import (
	"time"
)

type Favorite struct {
	ID         string    `bson:"_id" json:"-"`
	UserID     string    `bson:"user_id" json:"user_id"`
	PropertyID string    `bson:"property_id" json:"property_id"`
	AddedAt    time.Time `bson:"added_at" json:"added_at"`
}

func FavoriteID(userID, propertyID string) string {
	return userID + ":" + propertyID
}

// PropertyWatchers indexes favorites by property so a price drop reaches
// its watchers without scanning every user's favorites.
type PropertyWatchers struct {
	PropertyID string   `bson:"_id" json:"property_id"`
	UserIDs    []string `bson:"user_ids" json:"user_ids"`
}
