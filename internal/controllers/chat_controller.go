package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/services"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

type ChatController struct {
	chatService services.ChatService
}

func NewChatController(s services.ChatService) *ChatController {
	return &ChatController{chatService: s}
}

// POST /api/chat/send
func (c *ChatController) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req dtos.SendMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	convID, err := c.chatService.Send(r.Context(), id, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.SendMessageResponse{Message: "Message sent", ConversationID: convID})
}

// POST /api/chat/read
func (c *ChatController) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	var req dtos.MarkReadRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := c.chatService.MarkRead(r.Context(), id, req); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.MessageResponse{Message: "Marked as read"})
}

// GET /api/chat/conversations/{user_id}
func (c *ChatController) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	list, err := c.chatService.ListConversations(r.Context(), id, mux.Vars(r)["user_id"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}

// GET /api/chat/conversations/{conversation_id}/messages
func (c *ChatController) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	msgs, err := c.chatService.ListMessages(r.Context(), id, mux.Vars(r)["conversation_id"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, msgs)
}
