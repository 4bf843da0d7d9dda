package dtos

type UpdateLeadRequest struct {
	Status *string `json:"status"`
	Source *string `json:"source" validate:"omitempty,max=100"`
}

type AddLeadNoteRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}
