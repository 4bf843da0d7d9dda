package dtos

import (
	"github.com/krishnaproperties/estate-service/shared/go-models"
)

// CreatePropertyRequestRequest registers a buyer's standing search.
type CreatePropertyRequestRequest struct {
	UserID   string                  `json:"user_id"`
	Name     string                  `json:"name" validate:"max=200"`
	Email    string                  `json:"email" validate:"omitempty,email"`
	Phone    string                  `json:"phone" validate:"max=20"`
	Criteria *models.RequestCriteria `json:"criteria" validate:"required"`
}

type UpdateRequestStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}
