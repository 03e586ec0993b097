package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dm-service/internal/models"
	"dm-service/internal/repositories"
	"dm-service/internal/router"
)

// MessageSender is the router surface the handler depends on.
type MessageSender interface {
	Send(ctx context.Context, senderID int, receiverID int, body string) (models.Message, error)
}

// MessageHandler exposes conversation history and message sending.
type MessageHandler struct {
	sender   MessageSender
	messages repositories.MessageRepository
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(sender MessageSender, messages repositories.MessageRepository) *MessageHandler {
	return &MessageHandler{sender: sender, messages: messages}
}

// GetConversation returns the two-way history with a peer, oldest first.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	peerID, err := strconv.Atoi(c.Param("peer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid peer id"})
		return
	}
	userID := c.GetInt("userID")

	msgs, err := h.messages.Range(c.Request.Context(), userID, peerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load conversation"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// SendMessage routes a new message through the router.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req struct {
		ReceiverID int    `json:"receiver_id" binding:"required"`
		Body       string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt("userID")
	msg, err := h.sender.Send(c.Request.Context(), userID, req.ReceiverID, req.Body)
	if err != nil {
		if errors.Is(err, router.ErrInvalidRecipient) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot message yourself"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}

	c.JSON(http.StatusCreated, msg)
}
