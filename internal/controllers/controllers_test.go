package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/services"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type stubPropertyService struct {
	services.PropertyService
	lastQuery dtos.PropertyListQuery
}

func (s *stubPropertyService) ListProperties(_ context.Context, q dtos.PropertyListQuery) (*dtos.PropertyListResponse, error) {
	s.lastQuery = q
	return &dtos.PropertyListResponse{Properties: []*models.Property{}, Page: q.Page}, nil
}

func (s *stubPropertyService) GetProperty(_ context.Context, id string) (*models.Property, error) {
	if id != "p1" {
		return nil, utils.NewNotFoundError("Property not found")
	}
	return &models.Property{ID: "p1", Title: "Villa", History: []models.HistoryEntry{{Action: "created"}}}, nil
}

type stubLeadService struct {
	services.LeadService
	csv string
	err error
}

func (s *stubLeadService) ExportCSV(_ context.Context, w io.Writer) error {
	if s.err != nil {
		return s.err
	}
	_, err := io.WriteString(w, s.csv)
	return err
}

func decodeErr(t *testing.T, rr *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestListPropertiesQueryParsing(t *testing.T) {
	svc := &stubPropertyService{}
	c := NewPropertiesController(svc)

	rr := httptest.NewRecorder()
	c.ListPropertiesHandler(rr, httptest.NewRequest(http.MethodGet,
		"/api/properties?type=Villa%27s&min_price=1000000&bedrooms=2&sort=price_asc&lat=28.5&lng=77.3&radius_km=10", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, models.PropertyTypeVilla, svc.lastQuery.Type)
	assert.Equal(t, int64(1000000), utils.Val(svc.lastQuery.MinPrice))
	assert.Nil(t, svc.lastQuery.MaxPrice)
	assert.Equal(t, 2, svc.lastQuery.Bedrooms)
	assert.Equal(t, 1, svc.lastQuery.Page)
	assert.Equal(t, dtos.DefaultPropertyPageSize, svc.lastQuery.Limit)
	assert.Equal(t, 10.0, svc.lastQuery.RadiusKm)

	for _, qs := range []string{"limit=51", "limit=0", "page=0", "sort=cheapest", "min_price=abc", "lat=91&lng=0"} {
		rr := httptest.NewRecorder()
		c.ListPropertiesHandler(rr, httptest.NewRequest(http.MethodGet, "/api/properties?"+qs, nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code, qs)
	}
}

func TestGetPropertyHidesHistory(t *testing.T) {
	c := NewPropertiesController(&stubPropertyService{})
	r := mux.NewRouter()
	r.HandleFunc("/api/properties/{id}", c.GetPropertyHandler)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/properties/p1", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "history")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/properties/p2", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Property not found", decodeErr(t, rr).Message)
}

func TestCreatePropertyRequiresIdentity(t *testing.T) {
	c := NewPropertiesController(&stubPropertyService{})

	rr := httptest.NewRecorder()
	c.CreatePropertyHandler(rr, httptest.NewRequest(http.MethodPost, "/api/properties", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestDecodeAndValidate(t *testing.T) {
	var req dtos.CreateBlogCategoryRequest

	rr := httptest.NewRecorder()
	ok := decodeAndValidate(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`)), &req)
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, utils.ErrCodeInvalidPayload, decodeErr(t, rr).Code)

	rr = httptest.NewRecorder()
	ok = decodeAndValidate(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Guides"}`)), &req)
	assert.True(t, ok)
	assert.Equal(t, "Guides", req.Name)
}

func TestExportLeadsHandler(t *testing.T) {
	c := NewLeadsController(&stubLeadService{csv: "Type,ID\nrequest,r1\n"})

	rr := httptest.NewRecorder()
	c.ExportLeadsHandler(rr, httptest.NewRequest(http.MethodGet, "/api/admin/leads/export", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=leads_export.csv", rr.Header().Get("Content-Disposition"))
	assert.Equal(t, "Type,ID\nrequest,r1\n", rr.Body.String())

	c = NewLeadsController(&stubLeadService{err: errors.New("mongo down")})
	rr = httptest.NewRecorder()
	c.ExportLeadsHandler(rr, httptest.NewRequest(http.MethodGet, "/api/admin/leads/export", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, rr.Header().Get("Content-Disposition"))
	assert.Equal(t, utils.ErrCodeInternal, decodeErr(t, rr).Code)
}
