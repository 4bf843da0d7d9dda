package dtos

type CreateInquiryRequest struct {
	Type          string `json:"type" validate:"omitempty,oneof=general property"`
	Name          string `json:"name" validate:"max=200"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"max=20"`
	Message       string `json:"message" validate:"required,max=5000"`
	Subject       string `json:"subject" validate:"max=300"`
	PropertyID    string `json:"property_id"`
	PropertyTitle string `json:"property_title" validate:"max=300"`
	Source        string `json:"source" validate:"max=100"`
}
