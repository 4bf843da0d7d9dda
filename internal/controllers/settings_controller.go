package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/services"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type SettingsController struct {
	settingsService services.SettingsService
}

func NewSettingsController(s services.SettingsService) *SettingsController {
	return &SettingsController{settingsService: s}
}

// GET /api/settings/public
func (c *SettingsController) PublicSettingsHandler(w http.ResponseWriter, r *http.Request) {
	out, err := c.settingsService.PublicSettings(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// GET /api/admin/settings/{type}
func (c *SettingsController) GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	v, err := c.settingsService.GetSection(r.Context(), mux.Vars(r)["type"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, v)
}

// PUT /api/admin/settings/{type}
func (c *SettingsController) UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var values models.Settings
	if !decodeJSON(w, r, &values) {
		return
	}
	if err := c.settingsService.UpdateSection(r.Context(), mux.Vars(r)["type"], values); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Settings updated successfully"})
}
