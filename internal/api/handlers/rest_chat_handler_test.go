package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"hoyhub/backend/internal/api/handlers"
	"hoyhub/backend/internal/models"
	"hoyhub/backend/internal/services"
	"hoyhub/backend/internal/utils"
)

func TestRestChatHandler_SendMessage_NotParticipant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockChatSvc := new(MockChatService)
	handler := handlers.NewRestChatHandler(mockChatSvc)

	outsider := utils.NewSixID()
	r := gin.New()
	r.POST("/v1/chats/:id/messages", fakeAuth(outsider), handler.SendMessage)

	// Channel between two other users.
	channelID := services.ChannelID(utils.NewSixID().String(), utils.NewSixID().String(), "")

	body, _ := json.Marshal(map[string]string{"text": "hello"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/chats/"+channelID+"/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockChatSvc.AssertNotCalled(t, "Send")
}

func TestRestChatHandler_History_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockChatSvc := new(MockChatService)
	handler := handlers.NewRestChatHandler(mockChatSvc)

	userID := utils.NewSixID()
	peerID := utils.NewSixID()
	channelID := services.ChannelID(userID.String(), peerID.String(), "")

	r := gin.New()
	r.GET("/v1/chats/:id/messages", fakeAuth(userID), handler.History)

	messages := []models.Message{
		{Base: models.Base{ID: utils.NewSixID()}, ChannelID: channelID, SenderID: peerID.String(), Text: "Is it still available?"},
		{Base: models.Base{ID: utils.NewSixID()}, ChannelID: channelID, SenderID: userID.String(), Text: "Yes, it is."},
	}
	mockChatSvc.On("History", mock.Anything, channelID).Return(messages, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/chats/"+channelID+"/messages", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	data, ok := respBody["data"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, data, 2)
	mockChatSvc.AssertExpectations(t)
}

func TestRestChatHandler_OpenChannel_SelfChat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockChatSvc := new(MockChatService)
	handler := handlers.NewRestChatHandler(mockChatSvc)

	userID := utils.NewSixID()
	r := gin.New()
	r.POST("/v1/chats", fakeAuth(userID), handler.OpenChannel)

	body, _ := json.Marshal(map[string]string{"peer_id": userID.String()})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/chats", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockChatSvc.AssertNotCalled(t, "Open")
}
