package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dm-service/internal/mocks"
	"dm-service/internal/models"
	"dm-service/internal/router"
)

func setupMessageRouter(handler *MessageHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", 1)
		c.Next()
	})
	r.GET("/conversations/:peer_id/messages", handler.GetConversation)
	r.POST("/messages", handler.SendMessage)
	return r
}

func TestGetConversationSuccess(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(nil, messages)
	r := setupMessageRouter(handler)

	history := []models.Message{
		{ID: 1, SenderID: 2, ReceiverID: 1, Body: "hey", CreatedAt: time.Unix(10, 0).UTC()},
		{ID: 2, SenderID: 1, ReceiverID: 2, Body: "hi", CreatedAt: time.Unix(20, 0).UTC()},
	}
	messages.On("Range", mock.Anything, 1, 2).Return(history, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/2/messages", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Messages []models.Message `json:"messages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, history, resp.Messages)
	messages.AssertExpectations(t)
}

func TestGetConversationEmptyHistory(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(nil, messages)
	r := setupMessageRouter(handler)

	messages.On("Range", mock.Anything, 1, 5).Return(([]models.Message)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/5/messages", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"messages":[]}`, rec.Body.String())
	messages.AssertExpectations(t)
}

func TestGetConversationInvalidPeerID(t *testing.T) {
	handler := NewMessageHandler(nil, new(mocks.MessageRepositoryMock))
	r := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/conversations/abc/messages", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetConversationRepoError(t *testing.T) {
	messages := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(nil, messages)
	r := setupMessageRouter(handler)

	messages.On("Range", mock.Anything, 1, 2).Return(([]models.Message)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/conversations/2/messages", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	messages.AssertExpectations(t)
}

func TestSendMessageSuccess(t *testing.T) {
	sender := new(mocks.MessageSenderMock)
	handler := NewMessageHandler(sender, nil)
	r := setupMessageRouter(handler)

	stored := models.Message{ID: 7, SenderID: 1, ReceiverID: 2, Body: "hi"}
	sender.On("Send", mock.Anything, 1, 2, "hi").Return(stored, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"receiver_id":2,"body":"hi"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, stored.ID, resp.ID)
	sender.AssertExpectations(t)
}

func TestSendMessageSelfSendRejected(t *testing.T) {
	sender := new(mocks.MessageSenderMock)
	handler := NewMessageHandler(sender, nil)
	r := setupMessageRouter(handler)

	sender.On("Send", mock.Anything, 1, 1, "x").Return(models.Message{}, router.ErrInvalidRecipient).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"receiver_id":1,"body":"x"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	sender.AssertExpectations(t)
}

func TestSendMessagePersistenceFailure(t *testing.T) {
	sender := new(mocks.MessageSenderMock)
	handler := NewMessageHandler(sender, nil)
	r := setupMessageRouter(handler)

	sender.On("Send", mock.Anything, 1, 2, "hi").Return(models.Message{}, assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"receiver_id":2,"body":"hi"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	sender.AssertExpectations(t)
}

func TestSendMessageMissingBody(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MessageSenderMock), nil)
	r := setupMessageRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/messages", bytes.NewBufferString(`{"receiver_id":2}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
