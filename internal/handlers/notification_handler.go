package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"stockmate/internal/service"
)

type NotificationHandler struct {
	notifier *service.Notifier
}

func NewNotificationHandler(notifier *service.Notifier) *NotificationHandler {
	return &NotificationHandler{notifier: notifier}
}

// GET /v1/notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	notifications, err := h.notifier.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// DELETE /v1/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid notification ID"})
		return
	}
	if err := h.notifier.Acknowledge(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "notification removed"})
}
