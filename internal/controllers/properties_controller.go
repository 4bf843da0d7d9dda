package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/services"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type PropertiesController struct {
	propertyService services.PropertyService
}

func NewPropertiesController(s services.PropertyService) *PropertiesController {
	return &PropertiesController{propertyService: s}
}

// GET /api/properties
func (c *PropertiesController) ListPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	q, err := parsePropertyQuery(r)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	if !validateStruct(w, q) {
		return
	}
	resp, err := c.propertyService.ListProperties(r.Context(), q)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func parsePropertyQuery(r *http.Request) (dtos.PropertyListQuery, error) {
	qs := r.URL.Query()
	q := dtos.PropertyListQuery{
		Type:   qs.Get("type"),
		Search: qs.Get("search"),
		Sort:   qs.Get("sort"),
	}
	var err error
	if q.MinPrice, err = queryInt64Ptr(r, "min_price"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = queryInt64Ptr(r, "max_price"); err != nil {
		return q, err
	}
	if q.Bedrooms, err = queryInt(r, "bedrooms", 0); err != nil {
		return q, err
	}
	if q.Page, err = queryInt(r, "page", 1); err != nil {
		return q, err
	}
	if q.Limit, err = queryInt(r, "limit", dtos.DefaultPropertyPageSize); err != nil {
		return q, err
	}
	if q.Lat, err = queryFloatPtr(r, "lat"); err != nil {
		return q, err
	}
	if q.Lng, err = queryFloatPtr(r, "lng"); err != nil {
		return q, err
	}
	radius, err := queryFloatPtr(r, "radius_km")
	if err != nil {
		return q, err
	}
	q.RadiusKm = utils.Val(radius)
	return q, nil
}

// GET /api/properties/{id}
func (c *PropertiesController) GetPropertyHandler(w http.ResponseWriter, r *http.Request) {
	p, err := c.propertyService.GetProperty(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	// The audit trail is served only by the admin history route.
	p.History = nil
	utils.RespondWithJSON(w, http.StatusOK, p)
}

// GET /api/property-types
func (c *PropertiesController) PropertyTypesHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, c.propertyService.PropertyTypes())
}

// POST /api/properties
func (c *PropertiesController) CreatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := caller(w, r)
	if !ok {
		return
	}
	var req dtos.CreatePropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.propertyService.CreateProperty(r.Context(), admin.UserID, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.Logger.WithField("property_id", p.ID).Info("Property created")
	utils.RespondWithJSON(w, http.StatusCreated, dtos.CreatedResponse{Message: "Property created successfully", ID: p.ID})
}

// PUT /api/properties/{id}
func (c *PropertiesController) UpdatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	admin, ok := caller(w, r)
	if !ok {
		return
	}
	var req dtos.UpdatePropertyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if _, err := c.propertyService.UpdateProperty(r.Context(), admin.UserID, mux.Vars(r)["id"], req); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Property updated successfully"})
}

// DELETE /api/properties/{id}
func (c *PropertiesController) DeletePropertyHandler(w http.ResponseWriter, r *http.Request) {
	if err := c.propertyService.DeleteProperty(r.Context(), mux.Vars(r)["id"]); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Property deleted successfully"})
}

// GET /api/properties/{id}/history
func (c *PropertiesController) PropertyHistoryHandler(w http.ResponseWriter, r *http.Request) {
	h, err := c.propertyService.GetHistory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, h)
}
