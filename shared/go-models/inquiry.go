package models

import (
	"time"
)

const (
	InquiryKindGeneral  = "general"
	InquiryKindProperty = "property"
)

// Inquiry is a contact-form or property enquiry. Timestamp is a pointer
// because records imported from the old store may lack one.
type Inquiry struct {
	ID            string     `bson:"_id" json:"id"`
	Kind          string     `bson:"kind" json:"kind"`
	Name          string     `bson:"name,omitempty" json:"name,omitempty"`
	Email         string     `bson:"email" json:"email"`
	Phone         string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Message       string     `bson:"message" json:"message"`
	Subject       string     `bson:"subject,omitempty" json:"subject,omitempty"`
	PropertyID    string     `bson:"property_id,omitempty" json:"property_id,omitempty"`
	PropertyTitle string     `bson:"property_title,omitempty" json:"property_title,omitempty"`
	UserID        string     `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Source        string     `bson:"source,omitempty" json:"source,omitempty"`
	Status        LeadStatus `bson:"status,omitempty" json:"status"`
	Notes         []LeadNote `bson:"notes,omitempty" json:"notes,omitempty"`
	Timestamp     *time.Time `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
}
