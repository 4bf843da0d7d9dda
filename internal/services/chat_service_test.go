package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/shared/go-middleware"
	"github.com/krishnaproperties/estate-service/shared/go-utils"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected *utils.AppError, got %v", err)
	return appErr.StatusCode
}

func TestConversationID(t *testing.T) {
	assert.Equal(t, "u1", ConversationID("u1", "admin"))
	assert.Equal(t, "u1", ConversationID("admin", "u1"))
}

func TestChatSend(t *testing.T) {
	ctx := context.Background()
	user := &middleware.Identity{UserID: "u1", Role: middleware.RoleUser}
	admin := &middleware.Identity{UserID: "staff-7", Role: middleware.RoleAdmin}

	t.Run("user to desk", func(t *testing.T) {
		repo := &fakeChatRepo{}
		conv, err := NewChatService(repo, fakeLimiter{}).Send(ctx, user, dtos.SendMessageRequest{Text: " hello <b>there</b> "})
		require.NoError(t, err)
		assert.Equal(t, "u1", conv)
		require.Len(t, repo.sent, 1)
		assert.Equal(t, "u1", repo.sent[0].SenderID)
		assert.Equal(t, "admin", repo.recipients[0])
		assert.NotContains(t, repo.sent[0].Text, "<b>")
	})

	t.Run("admin reply", func(t *testing.T) {
		repo := &fakeChatRepo{}
		conv, err := NewChatService(repo, fakeLimiter{}).Send(ctx, admin, dtos.SendMessageRequest{RecipientID: "u1", Text: "Yes, still available"})
		require.NoError(t, err)
		assert.Equal(t, "u1", conv)
		assert.Equal(t, "admin", repo.sent[0].SenderID)
	})

	rejections := []struct {
		name   string
		caller *middleware.Identity
		req    dtos.SendMessageRequest
		status int
	}{
		{"spoofed sender", user, dtos.SendMessageRequest{SenderID: "u2", Text: "hi"}, http.StatusForbidden},
		{"user to user", user, dtos.SendMessageRequest{RecipientID: "u2", Text: "hi"}, http.StatusForbidden},
		{"empty message", user, dtos.SendMessageRequest{Text: "   "}, http.StatusBadRequest},
		{"admin to self", admin, dtos.SendMessageRequest{RecipientID: "admin", Text: "hi"}, http.StatusBadRequest},
		{"admin without recipient", admin, dtos.SendMessageRequest{Text: "hi"}, http.StatusBadRequest},
		{"wrong conversation", user, dtos.SendMessageRequest{Text: "hi", ConversationID: "u9"}, http.StatusBadRequest},
	}
	for _, tc := range rejections {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeChatRepo{}
			_, err := NewChatService(repo, fakeLimiter{}).Send(ctx, tc.caller, tc.req)
			assert.Equal(t, tc.status, statusOf(t, err))
			assert.Empty(t, repo.sent)
		})
	}

	t.Run("rate limited", func(t *testing.T) {
		repo := &fakeChatRepo{}
		_, err := NewChatService(repo, fakeLimiter{err: utils.ErrRateLimitExceeded}).Send(ctx, user, dtos.SendMessageRequest{Text: "hi"})
		var appErr *utils.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, http.StatusTooManyRequests, appErr.StatusCode)
		assert.Equal(t, "Rate limit exceeded. Please wait a moment.", appErr.Message)
		assert.Empty(t, repo.sent)
	})
}

func TestChatReadAuthorization(t *testing.T) {
	ctx := context.Background()
	user := &middleware.Identity{UserID: "u1", Role: middleware.RoleUser}
	svc := NewChatService(&fakeChatRepo{}, fakeLimiter{})

	err := svc.MarkRead(ctx, user, dtos.MarkReadRequest{ConversationID: "u2", UserID: "u1"})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = svc.ListConversations(ctx, user, "admin")
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = svc.ListMessages(ctx, user, "u2")
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}
