package models

import (
	"time"
)

type EventType string

const (
	EventSiteView     EventType = "site_view"
	EventPropertyView EventType = "property_view"
	EventContact      EventType = "contact"
	EventLike         EventType = "like"
)

func ParseEventType(s string) (EventType, bool) {
	switch EventType(s) {
	case EventSiteView, EventPropertyView, EventContact, EventLike:
		return EventType(s), true
	}
	return "", false
}

type Event struct {
	ID         string         `bson:"_id" json:"id"`
	Type       EventType      `bson:"type" json:"type"`
	PropertyID string         `bson:"property_id,omitempty" json:"property_id,omitempty"`
	UserID     string         `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Metadata   map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Timestamp  time.Time      `bson:"timestamp" json:"timestamp"`
}

const GeneralStatsID = "general"

// GeneralStats is the stats/general counter document.
type GeneralStats struct {
	ID            string `bson:"_id" json:"-"`
	SiteViews     int64  `bson:"site_views" json:"site_views"`
	TotalContacts int64  `bson:"total_contacts" json:"total_contacts"`
}

// MonthlyStats is monthly_stats/<YYYY-MM>: one counter per event type.
type MonthlyStats struct {
	Month  string           `bson:"_id" json:"month"`
	Counts map[string]int64 `bson:",inline" json:"counts"`
}

func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}
