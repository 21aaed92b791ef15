// internal/handlers/notification.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/atelier-backend/internal/services"
	"github.com/javajoker/atelier-backend/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// GET /notifications
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))

	notifications, total, err := h.notificationService.List(c.Request.Context(), params, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(notifications, total, params))
}

// PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"id": id})
}
