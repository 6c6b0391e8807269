package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JoeLeDev/RSs/internal/middleware"
	"github.com/JoeLeDev/RSs/internal/services"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req services.SendMessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	message, err := h.messageService.Send(ctx, middleware.CurrentUser(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

// GetMessages returns the caller's message history across all conversations.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	messages, err := h.messageService.ListMine(ctx, middleware.CurrentUser(c),
		intQuery(c, "page", 1), intQuery(c, "limit", 50))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

// GetConversation returns the thread between the caller and the user in the
// path.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	peerID, ok := pathID(c, "user_id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	messages, err := h.messageService.Conversation(ctx, middleware.CurrentUser(c), peerID,
		intQuery(c, "page", 1), intQuery(c, "limit", 50))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
