package dtos

type SendMessageRequest struct {
	SenderID       string   `json:"senderId"`
	Text           string   `json:"text" validate:"max=5000"`
	Attachments    []string `json:"attachments" validate:"max=10,dive,max=2048"`
	ConversationID string   `json:"conversationId"`
	RecipientID    string   `json:"recipientId"`
}

type SendMessageResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

type MarkReadRequest struct {
	ConversationID string `json:"conversationId" validate:"required"`
	UserID         string `json:"userId" validate:"required"`
}
