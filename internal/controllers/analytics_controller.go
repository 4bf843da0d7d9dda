package controllers

import (
	"net/http"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/services"
	"github.com/krishnaproperties/estate-service/shared/go-middleware"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type AnalyticsController struct {
	analyticsService services.AnalyticsService
	cleanupService   services.CleanupService
}

func NewAnalyticsController(as services.AnalyticsService, cs services.CleanupService) *AnalyticsController {
	return &AnalyticsController{analyticsService: as, cleanupService: cs}
}

// POST /api/analytics/track
func (c *AnalyticsController) TrackEventHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.TrackEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	var userID string
	if id, ok := middleware.IdentityFromContext(r.Context()); ok {
		userID = id.UserID
	}
	if err := c.analyticsService.TrackEvent(r.Context(), userID, req); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.MessageResponse{Message: "Event tracked"})
}

// GET /api/analytics/dashboard
func (c *AnalyticsController) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	resp, err := c.analyticsService.GetDashboard(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// GET /api/analytics/monthly
func (c *AnalyticsController) MonthlyStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := c.analyticsService.MonthlyStats(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// DELETE /api/admin/cleanup
func (c *AnalyticsController) CleanupHandler(w http.ResponseWriter, r *http.Request) {
	res, err := c.cleanupService.Run(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}
