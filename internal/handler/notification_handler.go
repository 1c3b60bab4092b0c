package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forum-api/internal/pagination"
	"forum-api/internal/response"
	"forum-api/internal/service"
)

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// ListUnread godoc
// @Summary      List unread notifications
// @Tags         notifications
// @Produce      json
// @Param        page query int false "Page (default 1)"
// @Param        limit query int false "Page size (1-100, default 10)"
// @Param        sortDir query string false "asc or desc (default desc)"
// @Success      200 {object} response.SuccessResponse{data=pagination.Page[dto.NotificationResponse]}
// @Security     BearerAuth
// @Router       /user/notifications/unread [get]
func (h *NotificationHandler) ListUnread(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var raw pagination.RawQuery
	_ = c.ShouldBindQuery(&raw)

	page, err := h.notificationService.ListUnread(c.Request.Context(), userID, raw)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, page)
}

// UnreadCount godoc
// @Summary      Count unread notifications
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=dto.UnreadCountResponse}
// @Security     BearerAuth
// @Router       /user/notifications/unread/count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.notificationService.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, count)
}

// MarkAsRead godoc
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=response.MessageResponse}
// @Failure      400 {object} response.ErrorResponse "Notification already marked as read"
// @Failure      404 {object} response.ErrorResponse "Notification not found"
// @Security     BearerAuth
// @Router       /user/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	notificationID, ok := parseUUIDParam(c, "id", "notification")
	if !ok {
		return
	}

	if err := h.notificationService.MarkAsRead(c.Request.Context(), userID, notificationID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendMessage(c, http.StatusOK, "Notification marked as read")
}

// MarkAllAsRead godoc
// @Summary      Mark every notification as read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=dto.MarkAllReadResponse}
// @Security     BearerAuth
// @Router       /user/notifications/read-all [patch]
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.notificationService.MarkAllAsRead(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, resp)
}
