package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/services"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type NotificationsController struct {
	notificationService services.NotificationService
}

func NewNotificationsController(s services.NotificationService) *NotificationsController {
	return &NotificationsController{notificationService: s}
}

// GET /api/notifications
func (c *NotificationsController) ListHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	list, err := c.notificationService.List(r.Context(), id.UserID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// PUT /api/notifications/{id}/read
func (c *NotificationsController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	if err := c.notificationService.MarkRead(r.Context(), id.UserID, mux.Vars(r)["id"]); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SuccessResponse{Success: true})
}

// PUT /api/notifications/read-all
func (c *NotificationsController) MarkAllReadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	n, err := c.notificationService.MarkAllRead(r.Context(), id.UserID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SuccessResponse{Success: true, Count: n})
}

// DELETE /api/notifications/{id}
func (c *NotificationsController) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	if err := c.notificationService.Delete(r.Context(), id.UserID, mux.Vars(r)["id"]); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SuccessResponse{Success: true})
}

// GET /api/notifications/preferences
func (c *NotificationsController) GetPreferencesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	prefs, err := c.notificationService.GetPreferences(r.Context(), id.UserID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, prefs)
}

// POST /api/notifications/preferences
func (c *NotificationsController) UpdatePreferencesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req dtos.UpdatePreferencesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if _, err := c.notificationService.UpdatePreferences(r.Context(), id.UserID, req); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.SuccessResponse{Success: true})
}
