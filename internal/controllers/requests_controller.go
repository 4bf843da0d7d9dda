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

type RequestsController struct {
	requestService services.RequestService
}

func NewRequestsController(s services.RequestService) *RequestsController {
	return &RequestsController{requestService: s}
}

// POST /api/requests
func (c *RequestsController) CreateRequestHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req dtos.CreatePropertyRequestRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = id.UserID
	}
	if !middleware.RequireSelfOrAdmin(w, r, req.UserID) {
		return
	}
	pr, err := c.requestService.CreateRequest(r.Context(), req.UserID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.CreatedResponse{Message: "Property request submitted successfully", ID: pr.ID})
}

// GET /api/users/{user_id}/requests
func (c *RequestsController) ListUserRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if !middleware.RequireSelfOrAdmin(w, r, userID) {
		return
	}
	list, err := c.requestService.ListForUser(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// PATCH /api/requests/{id}
func (c *RequestsController) UpdateRequestStatusHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateRequestStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := c.requestService.UpdateStatus(r.Context(), id, mux.Vars(r)["id"], models.RequestStatus(req.Status)); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Request updated successfully"})
}

// GET /api/admin/requests
func (c *RequestsController) ListAllRequestsHandler(w http.ResponseWriter, r *http.Request) {
	list, err := c.requestService.ListAll(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}
