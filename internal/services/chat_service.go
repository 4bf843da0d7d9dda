package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-middleware"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-repositories"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

// MaxChatMessagesListed is the window returned for one conversation.
const MaxChatMessagesListed = 200

type ChatService interface {
	Send(ctx context.Context, caller *middleware.Identity, req dtos.SendMessageRequest) (string, error)
	MarkRead(ctx context.Context, caller *middleware.Identity, req dtos.MarkReadRequest) error
	ListConversations(ctx context.Context, caller *middleware.Identity, participantID string) ([]*models.Conversation, error)
	ListMessages(ctx context.Context, caller *middleware.Identity, conversationID string) ([]*models.ChatMessage, error)
}

type chatService struct {
	repo    repositories.ChatRepository
	limiter RateLimiterService
}

func NewChatService(repo repositories.ChatRepository, limiter RateLimiterService) ChatService {
	return &chatService{repo: repo, limiter: limiter}
}

// ConversationID applies the support-desk rule: a thread is keyed by the
// user's id, so messages to the desk use the sender and replies use the
// recipient.
func ConversationID(senderID, recipientID string) string {
	if recipientID == utils.AdminParticipantID {
		return senderID
	}
	return recipientID
}

// Send returns the conversation the message landed in.
func (s *chatService) Send(ctx context.Context, caller *middleware.Identity, req dtos.SendMessageRequest) (string, error) {
	text := utils.SanitizeText(req.Text)
	if text == "" && len(req.Attachments) == 0 {
		return "", utils.NewValidationError("Missing required fields", nil)
	}

	sender := strings.TrimSpace(req.SenderID)
	recipient := strings.TrimSpace(req.RecipientID)
	if caller.IsAdmin() {
		if sender == "" {
			sender = utils.AdminParticipantID
		}
	} else {
		if sender == "" {
			sender = caller.UserID
		}
		if sender != caller.UserID {
			return "", utils.NewForbiddenError("Insufficient permissions")
		}
		// Users only ever write to the support desk.
		if recipient == "" {
			recipient = utils.AdminParticipantID
		}
		if recipient != utils.AdminParticipantID {
			return "", utils.NewForbiddenError("Insufficient permissions")
		}
	}
	if recipient == "" {
		return "", utils.NewValidationError("Missing required fields", nil)
	}
	if sender == recipient {
		return "", utils.NewValidationError("Sender and recipient must differ", nil)
	}

	if err := s.limiter.CheckChatSend(ctx, caller.UserID); err != nil {
		return "", utils.NewRateLimitError(msgRateLimited)
	}

	convID := ConversationID(sender, recipient)
	if req.ConversationID != "" && req.ConversationID != convID {
		return "", utils.NewValidationError("Conversation does not match the participants", nil)
	}

	msg := &models.ChatMessage{
		ID:             uuid.NewString(),
		ConversationID: convID,
		SenderID:       sender,
		Text:           text,
		Attachments:    req.Attachments,
		Timestamp:      time.Now().UTC(),
	}
	if err := s.repo.Send(ctx, msg, recipient); err != nil {
		if errors.Is(err, repositories.ErrUnsafeParticipant) {
			return "", utils.NewValidationError("Invalid participant id", err)
		}
		return "", utils.NewInternalError(err)
	}
	return convID, nil
}

func (s *chatService) MarkRead(ctx context.Context, caller *middleware.Identity, req dtos.MarkReadRequest) error {
	if !caller.IsAdmin() && (req.UserID != caller.UserID || req.ConversationID != caller.UserID) {
		return utils.NewForbiddenError("Insufficient permissions")
	}
	err := s.repo.MarkRead(ctx, req.ConversationID, req.UserID)
	switch {
	case errors.Is(err, utils.ErrNotFound):
		return utils.NewNotFoundError("Conversation not found")
	case errors.Is(err, repositories.ErrUnsafeParticipant):
		return utils.NewValidationError("Invalid participant id", err)
	case err != nil:
		return utils.NewInternalError(err)
	}
	return nil
}

func (s *chatService) ListConversations(ctx context.Context, caller *middleware.Identity, participantID string) ([]*models.Conversation, error) {
	if participantID != caller.UserID && !caller.IsAdmin() {
		return nil, utils.NewForbiddenError("Insufficient permissions")
	}
	list, err := s.repo.ListConversations(ctx, participantID)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return list, nil
}

func (s *chatService) ListMessages(ctx context.Context, caller *middleware.Identity, conversationID string) ([]*models.ChatMessage, error) {
	if conversationID != caller.UserID && !caller.IsAdmin() {
		return nil, utils.NewForbiddenError("Insufficient permissions")
	}
	msgs, err := s.repo.ListMessages(ctx, conversationID, MaxChatMessagesListed)
	if err != nil {
		return nil, utils.NewInternalError(err)
	}
	return msgs, nil
}
