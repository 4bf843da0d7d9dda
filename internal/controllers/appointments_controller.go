package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/services"
	"github.com/krishnaproperties/estate-service/shared/go-middleware"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type AppointmentsController struct {
	appointmentService services.AppointmentService
}

func NewAppointmentsController(s services.AppointmentService) *AppointmentsController {
	return &AppointmentsController{appointmentService: s}
}

// POST /api/appointments
func (c *AppointmentsController) CreateAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req dtos.CreateAppointmentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = id.UserID
	}
	if !middleware.RequireSelfOrAdmin(w, r, req.UserID) {
		return
	}
	if _, err := c.appointmentService.CreateAppointment(r.Context(), req.UserID, req); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.MessageResponse{Message: "Appointment request sent successfully"})
}

// GET /api/users/{user_id}/appointments
func (c *AppointmentsController) ListUserAppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if !middleware.RequireSelfOrAdmin(w, r, userID) {
		return
	}
	list, err := c.appointmentService.ListForUser(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// POST /api/appointments/{id}/cancel
func (c *AppointmentsController) CancelAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	if err := c.appointmentService.Cancel(r.Context(), id, mux.Vars(r)["id"]); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Appointment cancelled"})
}

// GET /api/admin/appointments
func (c *AppointmentsController) ListAllAppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := c.appointmentService.ListAll(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// PATCH /api/admin/appointments/{id}
func (c *AppointmentsController) UpdateAppointmentStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.UpdateAppointmentStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	a, err := c.appointmentService.UpdateStatus(r.Context(), mux.Vars(r)["id"], models.AppointmentStatus(req.Status))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, a)
}
