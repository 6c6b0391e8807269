package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JoeLeDev/RSs/internal/middleware"
	"github.com/JoeLeDev/RSs/internal/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	notifications, err := h.notificationService.List(ctx, middleware.CurrentUser(c).ID,
		intQuery(c, "page", 1), intQuery(c, "limit", 20))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	count, err := h.notificationService.UnreadCount(ctx, middleware.CurrentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.notificationService.MarkRead(ctx, middleware.CurrentUser(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	ctx, cancel := reqCtx(c)
	defer cancel()

	updated, err := h.notificationService.MarkAllRead(ctx, middleware.CurrentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.notificationService.Delete(ctx, middleware.CurrentUser(c).ID, id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
