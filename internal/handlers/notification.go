// internal/handlers/notification.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/rental-backend/internal/i18n"
	"github.com/javajoker/rental-backend/internal/services"
	"github.com/javajoker/rental-backend/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GET /notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	params := services.NotificationListParams{
		PaginationParams: utils.GetPaginationParams(c),
		UnreadOnly:       c.Query("unread") == "true",
	}

	notifications, total, err := h.notificationService.ListForUser(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err, "notification")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(notifications, total, params.PaginationParams))
}

// PUT /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), userID, id); err != nil {
		respondError(c, err, "notification")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyNotificationMarkedRead),
	})
}
