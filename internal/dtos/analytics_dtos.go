package dtos

import (
	"github.com/krishnaproperties/estate-service/shared/go-models"
)

type TrackEventRequest struct {
	Type       string         `json:"type" validate:"required"`
	PropertyID string         `json:"property_id"`
	Metadata   map[string]any `json:"metadata"`
}

type TopProperty struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Views int64  `json:"views"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type RecentEvent struct {
	ID         string           `json:"id"`
	Type       models.EventType `json:"type"`
	PropertyID string           `json:"property_id,omitempty"`
	UserID     string           `json:"user_id,omitempty"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
	Timestamp  string           `json:"timestamp"`
}

// DashboardResponse is the admin analytics snapshot.
type DashboardResponse struct {
	SiteViews       int64                       `json:"site_views"`
	TotalContacts   int64                       `json:"total_contacts"`
	TotalProperties int64                       `json:"total_properties"`
	TotalUsers      int64                       `json:"total_users"`
	TotalLeads      int64                       `json:"total_leads"`
	LeadFunnel      map[models.LeadStatus]int64 `json:"lead_funnel"`
	TopProperties   []TopProperty               `json:"top_properties"`
	TrafficTrend    []DailyCount                `json:"traffic_trend"`
	RecentEvents    []RecentEvent               `json:"recent_events"`
	GeneratedAt     string                      `json:"generated_at"`
}

type CleanupResponse struct {
	Message              string   `json:"message"`
	EventsDeleted        int      `json:"events_deleted"`
	NotificationsDeleted int      `json:"notifications_deleted"`
	AggregatedMonths     []string `json:"aggregated_months"`
}
