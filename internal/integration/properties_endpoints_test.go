//go:build (dev_test || dev) && integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/routes"
	"github.com/krishnaproperties/estate-service/shared/go-middleware"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-testhelpers"
)

func TestPropertyCatalogueIsPublic(t *testing.T) {
	h.T = t
	p := h.CreateTestProperty("Integration Flat", "₹ 45,00,000", 2)

	resp := h.DoRequest(h.BuildAuthRequest(http.MethodGet, "/api/properties/"+p.ID, "", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, h.ReadBody(resp))

	var got models.Property
	testhelpers.DecodeJSON(t, resp.Body, &got)
	assert.Equal(t, p.Title, got.Title)
	assert.Empty(t, got.History, "public reads never expose history")

	resp = h.DoRequest(h.BuildAuthRequest(http.MethodGet, routes.Properties+"?limit=51", "", nil))
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPropertyWritesRequireAdmin(t *testing.T) {
	h.T = t
	body := dtos.CreatePropertyRequest{Title: "Plot 7", Price: "₹ 80,00,000", Type: models.PropertyTypeFreeHoldPlot}

	resp := h.DoRequest(h.BuildAuthRequest(http.MethodPost, routes.Properties, "", body))
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	userJWT := h.CreateJWT("integration-buyer", middleware.RoleUser)
	resp = h.DoRequest(h.BuildAuthRequest(http.MethodPost, routes.Properties, userJWT, body))
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	adminJWT := h.CreateJWT("integration-admin", middleware.RoleAdmin)
	resp = h.DoRequest(h.BuildAuthRequest(http.MethodPost, routes.Properties, adminJWT, body))
	require.Equal(t, http.StatusCreated, resp.StatusCode, h.ReadBody(resp))

	var created dtos.CreatedResponse
	testhelpers.DecodeJSON(t, resp.Body, &created)
	require.NotEmpty(t, created.ID)
	t.Cleanup(func() { _, _ = h.PropertyRepo.Delete(h.Ctx, created.ID) })

	resp = h.DoRequest(h.BuildAuthRequest(http.MethodGet, "/api/properties/"+created.ID+"/history", adminJWT, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, h.ReadBody(resp))
	var history []models.HistoryEntry
	testhelpers.DecodeJSON(t, resp.Body, &history)
	require.NotEmpty(t, history)
	assert.Equal(t, "created", history[0].Action)

	bad := dtos.CreatePropertyRequest{Title: "Plot 8", Price: "call us", Type: models.PropertyTypeFreeHoldPlot}
	resp = h.DoRequest(h.BuildAuthRequest(http.MethodPost, routes.Properties, adminJWT, bad))
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
