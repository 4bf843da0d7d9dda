package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/krishnaproperties/estate-service/internal/app"
	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// HealthController checks DB connectivity, etc.
type HealthController struct {
	app *app.App
}

func NewHealthController(app *app.App) *HealthController {
	return &HealthController{app}
}

// HealthCheckHandler => GET /health
func (c *HealthController) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := dtos.HealthCheckResponse{Status: "OK", Checks: map[string]string{}}
	var firstErr error
	for name, err := range c.app.Ping(ctx) {
		if err != nil {
			resp.Checks[name] = "unreachable"
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		resp.Checks[name] = "ok"
	}
	if firstErr != nil {
		utils.Logger.WithError(firstErr).Error("estate-service dependency unreachable")
		utils.RespondErrorWithCode(w, http.StatusServiceUnavailable, utils.ErrCodeServiceUnavailable, "Dependency unreachable", resp.Checks, firstErr)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}
