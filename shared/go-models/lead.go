package models

import (
	"time"
)

type LeadStatus string

// Funnel buckets, in pipeline order.
const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

var FunnelStatuses = []LeadStatus{
	LeadStatusNew,
	LeadStatusContacted,
	LeadStatusQualified,
	LeadStatusConverted,
	LeadStatusLost,
}

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusLost:
		return true
	}
	return false
}

// Bucket maps any stored status onto a funnel bucket. Empty and unknown
// values ("read", "replied", legacy data) count as new.
func (s LeadStatus) Bucket() LeadStatus {
	if s.Valid() {
		return s
	}
	return LeadStatusNew
}

type LeadType string

const (
	LeadTypeInquiry LeadType = "inquiry"
	LeadTypeRequest LeadType = "request"
)

func ParseLeadType(s string) (LeadType, bool) {
	switch LeadType(s) {
	case LeadTypeInquiry, LeadTypeRequest:
		return LeadType(s), true
	}
	return "", false
}

const DefaultLeadSource = "Website"

// LeadNote is appended to an inquiry or request, never edited in place.
type LeadNote struct {
	Text      string    `bson:"text" json:"text"`
	Author    string    `bson:"author" json:"author"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Lead is the CRM view over an Inquiry or a PropertyRequest. It is computed
// on read and never stored.
type Lead struct {
	ID            string           `json:"id"`
	Type          LeadType         `json:"type"`
	Name          string           `json:"name"`
	Email         string           `json:"email,omitempty"`
	Phone         string           `json:"phone,omitempty"`
	Title         string           `json:"title"`
	PropertyID    string           `json:"property_id,omitempty"`
	PropertyTitle string           `json:"property_title,omitempty"`
	Message       string           `json:"message,omitempty"`
	UserID        string           `json:"user_id,omitempty"`
	Criteria      *RequestCriteria `json:"criteria,omitempty"`
	Status        LeadStatus       `json:"status"`
	Source        string           `json:"source"`
	Notes         []LeadNote       `json:"notes,omitempty"`
	CreatedAt     *time.Time       `json:"createdAt"`
}
