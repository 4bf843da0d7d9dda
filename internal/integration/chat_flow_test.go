//go:build (dev_test || dev) && integration

package integration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishnaproperties/estate-service/internal/dtos"
	"github.com/krishnaproperties/estate-service/internal/routes"
	"github.com/krishnaproperties/estate-service/shared/go-middleware"
	"github.com/krishnaproperties/estate-service/shared/go-models"
	"github.com/krishnaproperties/estate-service/shared/go-testhelpers"
)

func TestChatWithSupportDesk(t *testing.T) {
	h.T = t
	u := h.CreateTestUser("user")
	userJWT := h.CreateJWT(u.ID, middleware.RoleUser)
	adminJWT := h.CreateJWT("integration-admin", middleware.RoleAdmin)

	send := dtos.SendMessageRequest{SenderID: u.ID, RecipientID: "admin", Text: "Is the villa still available?"}
	resp := h.DoRequest(h.BuildAuthRequest(http.MethodPost, routes.ChatSend, userJWT, send))
	require.Equal(t, http.StatusCreated, resp.StatusCode, h.ReadBody(resp))
	var sent dtos.SendMessageResponse
	testhelpers.DecodeJSON(t, resp.Body, &sent)
	assert.Equal(t, u.ID, sent.ConversationID)

	// Users cannot speak for somebody else.
	spoof := dtos.SendMessageRequest{SenderID: "victim", RecipientID: "admin", Text: "hi"}
	resp = h.DoRequest(h.BuildAuthRequest(http.MethodPost, routes.ChatSend, userJWT, spoof))
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = h.DoRequest(h.BuildAuthRequest(http.MethodGet, "/api/chat/conversations/admin", adminJWT, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, h.ReadBody(resp))
	var convs []models.Conversation
	testhelpers.DecodeJSON(t, resp.Body, &convs)

	var found bool
	for _, c := range convs {
		if c.ID == u.ID {
			found = true
			require.NotNil(t, c.LastMessage)
			assert.Equal(t, "Is the villa still available?", c.LastMessage.Text)
		}
	}
	assert.True(t, found, "admin inbox lists the new conversation")

	resp = h.DoRequest(h.BuildAuthRequest(http.MethodGet, "/api/chat/conversations/"+u.ID+"/messages", userJWT, nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, h.ReadBody(resp))
	var msgs []models.ChatMessage
	testhelpers.DecodeJSON(t, resp.Body, &msgs)
	require.Len(t, msgs, 1)
}
