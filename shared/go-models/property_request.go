package models

import (
	"strings"
	"time"
)

type RequestStatus string

const (
	RequestStatusActive   RequestStatus = "active"
	RequestStatusInactive RequestStatus = "inactive"
)

func (s RequestStatus) Valid() bool {
	return s == RequestStatusActive || s == RequestStatusInactive
}

// RequestCriteria is a buyer's standing search. A nil MinPrice means no
// lower bound (0) and a nil MaxPrice means no upper bound.
type RequestCriteria struct {
	MinPrice *int64 `bson:"min_price,omitempty" json:"minPrice,omitempty"`
	MaxPrice *int64 `bson:"max_price,omitempty" json:"maxPrice,omitempty"`
	Bedrooms int    `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Type     string `bson:"type,omitempty" json:"type,omitempty"`
	Location string `bson:"location,omitempty" json:"location,omitempty"`
}

// AnyType reports whether the criteria accept every listing type.
func (c *RequestCriteria) AnyType() bool {
	t := strings.TrimSpace(c.Type)
	return t == "" || strings.EqualFold(t, "any")
}

// PropertyRequest doubles as a lead. Status is the matching switch
// (active|inactive); LeadStatus tracks the sales funnel separately so that
// working a lead never silences the buyer's saved search.
type PropertyRequest struct {
	ID         string          `bson:"_id" json:"id"`
	UserID     string          `bson:"user_id" json:"user_id"`
	Email      string          `bson:"email,omitempty" json:"email,omitempty"`
	Phone      string          `bson:"phone,omitempty" json:"phone,omitempty"`
	Name       string          `bson:"name,omitempty" json:"name,omitempty"`
	Criteria   RequestCriteria `bson:"criteria" json:"criteria"`
	Status     RequestStatus   `bson:"status" json:"status"`
	LeadStatus LeadStatus      `bson:"lead_status,omitempty" json:"lead_status,omitempty"`
	Source     string          `bson:"source,omitempty" json:"source,omitempty"`
	Notes      []LeadNote      `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  *time.Time      `bson:"created_at,omitempty" json:"created_at,omitempty"`
}
