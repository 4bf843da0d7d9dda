package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/krishnaproperties/estate-service/internal/config"
	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// Dashboard window sizes.
const (
	dashboardTopProperties = 5
	dashboardTrafficEvents = 500
	dashboardRecentEvents  = 10
	dashboardCacheKey      = "estate:analytics:dashboard"
)

type AnalyticsService interface {
	TrackEvent(ctx context.Context, userID string, req dtos.TrackEventRequest) error
	GetDashboard(ctx context.Context) (*dtos.DashboardResponse, error)
	MonthlyStats(ctx context.Context) ([]*models.MonthlyStats, error)
}

type analyticsService struct {
	eventRepo    repositories.EventRepository
	propertyRepo repositories.PropertyRepository
	userRepo     repositories.UserRepository
	leads        LeadService
	cache        redis.Cmdable // nil disables the snapshot cache
	cfg          *config.Config
}

func NewAnalyticsService(
	eventRepo repositories.EventRepository,
	propertyRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	leads LeadService,
	cache redis.Cmdable,
	cfg *config.Config,
) AnalyticsService {
	return &analyticsService{
		eventRepo:    eventRepo,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		leads:        leads,
		cache:        cache,
		cfg:          cfg,
	}
}

func (s *analyticsService) TrackEvent(ctx context.Context, userID string, req dtos.TrackEventRequest) error {
	t, ok := models.ParseEventType(req.Type)
	if !ok {
		return utils.NewValidationError("Invalid event type", nil)
	}

	ev := &models.Event{
		ID:         uuid.NewString(),
		Type:       t,
		PropertyID: req.PropertyID,
		UserID:     userID,
		Metadata:   req.Metadata,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.eventRepo.Insert(ctx, ev); err != nil {
		return utils.NewInternalError(err)
	}

	// Counters only ever move through atomic increments.
	var err error
	switch t {
	case models.EventSiteView:
		err = s.eventRepo.IncrementGeneral(ctx, "site_views")
	case models.EventContact:
		err = s.eventRepo.IncrementGeneral(ctx, "total_contacts")
	case models.EventPropertyView:
		if req.PropertyID != "" {
			err = s.propertyRepo.IncrementViews(ctx, req.PropertyID)
			if errors.Is(err, utils.ErrNotFound) {
				utils.Logger.WithField("property_id", req.PropertyID).Debug("property_view for unknown property")
				err = nil
			}
		}
	}
	// A stored event is never reported as failed.
	if err != nil {
		utils.Logger.WithError(err).WithFields(logrus.Fields{
			"event_id": ev.ID,
			"type":     t,
		}).Warn("Event stored but counter not incremented")
	}
	return nil
}

func (s *analyticsService) GetDashboard(ctx context.Context) (*dtos.DashboardResponse, error) {
	if s.cache != nil {
		var cached dtos.DashboardResponse
		hit, err := utils.GetCached(ctx, s.cache, dashboardCacheKey, &cached)
		if err != nil {
			utils.Logger.WithError(err).Warn("Dashboard cache read failed")
		} else if hit {
			return &cached, nil
		}
	}

	d := s.buildDashboard(ctx)

	if s.cache != nil {
		if err := utils.SetCached(ctx, s.cache, dashboardCacheKey, d, s.cfg.DashboardCacheTTL); err != nil {
			utils.Logger.WithError(err).Warn("Dashboard cache write failed")
		}
	}
	return d, nil
}

// buildDashboard runs every sub-query independently; a failing one leaves
// its part zero or empty and the rest of the snapshot intact.
func (s *analyticsService) buildDashboard(ctx context.Context) *dtos.DashboardResponse {
	d := &dtos.DashboardResponse{
		LeadFunnel:    map[models.LeadStatus]int64{},
		TopProperties: []dtos.TopProperty{},
		TrafficTrend:  []dtos.DailyCount{},
		RecentEvents:  []dtos.RecentEvent{},
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, st := range models.FunnelStatuses {
		d.LeadFunnel[st] = 0
	}

	degrade := func(part string, err error) {
		utils.Logger.WithError(err).WithFields(logrus.Fields{"part": part}).Warn("Dashboard sub-query failed; reporting empty")
	}

	if stats, err := s.eventRepo.GeneralStats(ctx); err != nil {
		degrade("general_stats", err)
	} else {
		d.SiteViews, d.TotalContacts = stats.SiteViews, stats.TotalContacts
	}

	if n, err := s.propertyRepo.Count(ctx); err != nil {
		degrade("total_properties", err)
	} else {
		d.TotalProperties = n
	}

	if n, err := s.userRepo.Count(ctx); err != nil {
		degrade("total_users", err)
	} else {
		d.TotalUsers = n
	}

	if funnel, total, err := s.leads.FunnelCounts(ctx); err != nil {
		degrade("lead_funnel", err)
	} else {
		d.LeadFunnel, d.TotalLeads = funnel, total
	}

	if top, err := s.propertyRepo.TopByViews(ctx, dashboardTopProperties); err != nil {
		degrade("top_properties", err)
	} else {
		for _, p := range top {
			d.TopProperties = append(d.TopProperties, dtos.TopProperty{ID: p.ID, Title: p.Title, Views: p.Views})
		}
	}

	if views, err := s.eventRepo.RecentByType(ctx, models.EventSiteView, dashboardTrafficEvents); err != nil {
		degrade("traffic_trend", err)
	} else {
		d.TrafficTrend = BucketByDay(views)
	}

	if recent, err := s.eventRepo.Recent(ctx, dashboardRecentEvents); err != nil {
		degrade("recent_events", err)
	} else {
		for _, e := range recent {
			d.RecentEvents = append(d.RecentEvents, dtos.RecentEvent{
				ID:         e.ID,
				Type:       e.Type,
				PropertyID: e.PropertyID,
				UserID:     e.UserID,
				Metadata:   e.Metadata,
				Timestamp:  e.Timestamp.UTC().Format(time.RFC3339),
			})
		}
	}
	return d
}

// BucketByDay counts events per UTC calendar day, oldest day first.
func BucketByDay(events []*models.Event) []dtos.DailyCount {
	counts := map[string]int64{}
	for _, e := range events {
		if e.Timestamp.IsZero() {
			continue
		}
		counts[e.Timestamp.UTC().Format("2006-01-02")]++
	}

	out := make([]dtos.DailyCount, 0, len(counts))
	for day, n := range counts {
		out = append(out, dtos.DailyCount{Date: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func (s *analyticsService) MonthlyStats(ctx context.Context) ([]*models.MonthlyStats, error) {
	stats, err := s.eventRepo.MonthlyStats(ctx)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return stats, nil
}
