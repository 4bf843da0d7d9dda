package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/services"
	"github.com/krishnaproperties/estate-service/shared/go-middleware"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type InquiriesController struct {
	inquiryService services.InquiryService
}

func NewInquiriesController(s services.InquiryService) *InquiriesController {
	return &InquiriesController{inquiryService: s}
}

// POST /api/inquiries
// Anonymous visitors may submit; a signed-in caller is recorded as owner.
func (c *InquiriesController) CreateInquiryHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateInquiryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	var userID string
	if id, ok := middleware.IdentityFromContext(r.Context()); ok {
		userID = id.UserID
	}
	inq, err := c.inquiryService.CreateInquiry(r.Context(), userID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.CreatedResponse{Message: "Inquiry sent successfully", ID: inq.ID})
}

// GET /api/users/{user_id}/inquiries
func (c *InquiriesController) ListUserInquiriesHandler(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user_id"]
	if !middleware.RequireSelfOrAdmin(w, r, userID) {
		return
	}
	list, err := c.inquiryService.ListForUser(r.Context(), userID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/admin/inquiries
func (c *InquiriesController) ListAllInquiriesHandler(w http.ResponseWriter, r *http.Request) {
	list, err := c.inquiryService.ListAll(r.Context())
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}
