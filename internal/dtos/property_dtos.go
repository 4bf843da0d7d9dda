package dtos

import (
	"github.com/krishnaproperties/estate-service/shared/go-models"
)

// Sort orders accepted by GET /api/properties.
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortPopular   = "popular"
)

// Paging bounds for GET /api/properties.
const (
	DefaultPropertyPageSize = 9
	MaxPropertyPageSize     = 50
)

// PropertyListQuery is parsed from the query string.
type PropertyListQuery struct {
	MinPrice *int64
	MaxPrice *int64
	Bedrooms int    `validate:"gte=0"`
	Type     string
	Search   string
	Sort     string `validate:"omitempty,oneof=newest price_asc price_desc popular"`
	Page     int    `validate:"gte=1"`
	Limit    int    `validate:"gte=1,lte=50"`

	// Near filter; all three must be present to apply.
	Lat      *float64 `validate:"omitempty,gte=-90,lte=90"`
	Lng      *float64 `validate:"omitempty,gte=-180,lte=180"`
	RadiusKm float64  `validate:"gte=0"`
}

type PropertyListResponse struct {
	Properties []*models.Property `json:"properties"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
}

// CreatePropertyRequest carries a new listing. Title, price and type are
// checked by the service so the error names the missing field.
type CreatePropertyRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Location    string              `json:"location" validate:"max=300"`
	Price       string              `json:"price"`
	Bedrooms    int                 `json:"bedrooms" validate:"gte=0,lte=100"`
	Bathrooms   int                 `json:"bathrooms" validate:"gte=0,lte=100"`
	Area        float64             `json:"area" validate:"gte=0"`
	Type        string              `json:"type"`
	Status      string              `json:"status" validate:"max=50"`
	ImageURL    string              `json:"imageUrl" validate:"max=2048"`
	Images      []string            `json:"images" validate:"max=50,dive,max=2048"`
	Coordinates *models.Coordinates `json:"coordinates"`
}

// UpdatePropertyRequest is a partial update; nil fields are left alone.
type UpdatePropertyRequest struct {
	Title       *string             `json:"title" validate:"omitempty,min=1"`
	Description *string             `json:"description"`
	Location    *string             `json:"location" validate:"omitempty,max=300"`
	Price       *string             `json:"price"`
	Bedrooms    *int                `json:"bedrooms" validate:"omitempty,gte=0,lte=100"`
	Bathrooms   *int                `json:"bathrooms" validate:"omitempty,gte=0,lte=100"`
	Area        *float64            `json:"area" validate:"omitempty,gte=0"`
	Type        *string             `json:"type" validate:"omitempty,min=1"`
	Status      *string             `json:"status" validate:"omitempty,max=50"`
	ImageURL    *string             `json:"imageUrl" validate:"omitempty,max=2048"`
	Images      *[]string           `json:"images" validate:"omitempty,max=50,dive,max=2048"`
	Coordinates *models.Coordinates `json:"coordinates"`
}
