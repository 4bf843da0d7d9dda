package controllers

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/services"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type LeadsController struct {
	leadService services.LeadService
}

func NewLeadsController(s services.LeadService) *LeadsController {
	return &LeadsController{leadService: s}
}

// GET /api/admin/leads[?status=]
func (c *LeadsController) ListLeadsHandler(w http.ResponseWriter, r *http.Request) {
	leads, err := c.leadService.ListLeads(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, leads)
}

// GET /api/admin/leads/export
func (c *LeadsController) ExportLeadsHandler(w http.ResponseWriter, r *http.Request) {
	// Buffered so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := c.leadService.ExportCSV(r.Context(), &buf); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+services.LeadsExportFilename)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GET /api/admin/leads/{type}/{id}
func (c *LeadsController) GetLeadHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	lead, err := c.leadService.GetLead(r.Context(), vars["type"], vars["id"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, lead)
}

// PATCH /api/admin/leads/{type}/{id}
func (c *LeadsController) UpdateLeadHandler(w http.ResponseWriter, r *http.Request) {
	var req dtos.UpdateLeadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	patch := repositories.LeadPatch{Source: req.Source}
	if req.Status != nil {
		st := models.LeadStatus(*req.Status)
		patch.Status = &st
	}
	vars := mux.Vars(r)
	lead, err := c.leadService.UpdateLead(r.Context(), vars["type"], vars["id"], patch)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, lead)
}

// POST /api/admin/leads/{type}/{id}/notes
func (c *LeadsController) AddLeadNoteHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := caller(w, r)
	if !ok {
		return
	}
	var req dtos.AddLeadNoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	author := admin.Name
	if author == "" {
		author = admin.Email
	}
	vars := mux.Vars(r)
	lead, err := c.leadService.AppendNote(r.Context(), vars["type"], vars["id"], req.Text, author)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, lead)
}
