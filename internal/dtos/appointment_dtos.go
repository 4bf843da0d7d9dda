package dtos

type CreateAppointmentRequest struct {
	UserID     string `json:"user_id"`
	PropertyID string `json:"property_id" validate:"required"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required,max=20"`
	Message    string `json:"message" validate:"max=2000"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
}
