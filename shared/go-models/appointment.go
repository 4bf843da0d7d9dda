package models

import (
	"time"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

const MaxPendingAppointments = 3

type Appointment struct {
	ID         string            `bson:"_id" json:"id"`
	UserID     string            `bson:"user_id" json:"user_id"`
	PropertyID string            `bson:"property_id" json:"property_id"`
	Date       string            `bson:"date" json:"date"`
	Time       string            `bson:"time" json:"time"`
	Message    string            `bson:"message,omitempty" json:"message,omitempty"`
	Status     AppointmentStatus `bson:"status" json:"status"`
	CreatedAt  time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time         `bson:"updated_at" json:"updated_at"`

	// Filled on read for the user's dashboard.
	PropertyTitle string `bson:"-" json:"property_title,omitempty"`
	PropertyImage string `bson:"-" json:"property_image,omitempty"`
}
