package models

import (
	"time"
)

// Listing types offered in the catalogue.
const (
	PropertyTypeForSale        = "For Sale"
	PropertyTypeForRent        = "For Rent"
	PropertyTypeAuthorityPlot  = "Authority plots"
	PropertyTypeFreeHoldPlot   = "Free Hold plots"
	PropertyTypeCommercialPlot = "Commercial Plots"
	PropertyTypeIndustrialPlot = "Industrial or Factory Plots"
	PropertyTypeVilla          = "Villa's"
)

const PropertyStatusAvailable = "available"

// PropertyTypes is the catalogue served by GET /api/property-types.
var PropertyTypes = []string{
	PropertyTypeAuthorityPlot,
	PropertyTypeFreeHoldPlot,
	PropertyTypeCommercialPlot,
	PropertyTypeIndustrialPlot,
	PropertyTypeVilla,
	PropertyTypeForSale,
	PropertyTypeForRent,
}

type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// HistoryEntry is one line of a listing's append-only audit trail.
type HistoryEntry struct {
	Action    string    `bson:"action" json:"action"`
	Details   string    `bson:"details,omitempty" json:"details,omitempty"`
	Actor     string    `bson:"actor,omitempty" json:"actor,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Property is a listing. Price keeps the display string the admin entered,
// e.g. "₹ 1,50,00,000"; utils.ParsePrice yields the comparable value.
type Property struct {
	ID          string         `bson:"_id" json:"id"`
	Title       string         `bson:"title" json:"title"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	Location    string         `bson:"location" json:"location"`
	Price       string         `bson:"price" json:"price"`
	Bedrooms    int            `bson:"bedrooms" json:"bedrooms"`
	Bathrooms   int            `bson:"bathrooms" json:"bathrooms"`
	Area        float64        `bson:"area,omitempty" json:"area,omitempty"`
	Type        string         `bson:"type" json:"type"`
	Status      string         `bson:"status,omitempty" json:"status,omitempty"`
	ImageURL    string         `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	Images      []string       `bson:"images,omitempty" json:"images,omitempty"`
	Coordinates *Coordinates   `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
	Views       int64          `bson:"views" json:"views"`
	CreatedAt   time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updated_at" json:"updatedAt"`
	History     []HistoryEntry `bson:"history,omitempty" json:"history,omitempty"`
}

// PrimaryImage is the first gallery image, falling back to the cover URL.
func (p *Property) PrimaryImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return p.ImageURL
}
