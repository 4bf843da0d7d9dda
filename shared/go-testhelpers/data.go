package testhelpers

import (
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/krishnaproperties/estate-service/shared/go-models"
)

// CreateTestProperty inserts an available listing at price and removes it
// when the test ends.
func (h *TestHelper) CreateTestProperty(title, price string, bedrooms int) *models.Property {
	now := time.Now().UTC()
	p := &models.Property{
		ID:        uuid.NewString(),
		Title:     title,
		Location:  "Sec 16B, Greater Noida West",
		Price:     price,
		Bedrooms:  bedrooms,
		Bathrooms: 1,
		Type:      models.PropertyTypeForSale,
		Status:    models.PropertyStatusAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(h.T, h.PropertyRepo.Create(h.Ctx, p))
	h.T.Cleanup(func() { _, _ = h.PropertyRepo.Delete(h.Ctx, p.ID) })
	return p
}

// CreateTestUser inserts a user with a phone so sync treats it as known.
func (h *TestHelper) CreateTestUser(role string) *models.User {
	now := time.Now().UTC()
	u := &models.User{
		ID:        "test-" + uuid.NewString(),
		Email:     "buyer-" + uuid.NewString()[:8] + "@example.test",
		Name:      "Integration Buyer",
		Phone:     "+919876543210",
		Role:      role,
		CreatedAt: now,
		LastLogin: now,
	}
	require.NoError(h.T, h.UserRepo.Create(h.Ctx, u))
	return u
}
