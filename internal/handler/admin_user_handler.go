package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"forum-api/internal/dto"
	"forum-api/internal/pagination"
	"forum-api/internal/response"
	"forum-api/internal/service"
)

// AdminUserHandler serves user moderation for admins
type AdminUserHandler struct {
	adminService service.AdminUserService
}

func NewAdminUserHandler(adminService service.AdminUserService) *AdminUserHandler {
	return &AdminUserHandler{
		adminService: adminService,
	}
}

type listUsersFunc func(ctx context.Context, raw pagination.RawQuery) (*pagination.Page[dto.UserResponse], error)

type transitionFunc func(ctx context.Context, actorID, userID uuid.UUID) (*dto.UserResponse, error)

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Param        page query int false "Page (default 1)"
// @Param        limit query int false "Page size (1-100, default 10)"
// @Param        sortBy query string false "username, fullName, email, role, status, bannedAt, deletedAt or createdAt"
// @Param        sortDir query string false "asc or desc (default desc)"
// @Param        q query string false "Search in username and email"
// @Success      200 {object} response.SuccessResponse{data=pagination.Page[dto.UserResponse]}
// @Security     BearerAuth
// @Router       /admin/users [get]
func (h *AdminUserHandler) ListUsers(c *gin.Context) {
	h.list(c, h.adminService.ListUsers)
}

// ListBannedUsers godoc
// @Summary      List banned users
// @Tags         admin
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=pagination.Page[dto.UserResponse]}
// @Security     BearerAuth
// @Router       /admin/users/banned [get]
func (h *AdminUserHandler) ListBannedUsers(c *gin.Context) {
	h.list(c, h.adminService.ListBannedUsers)
}

// ListDeletedUsers godoc
// @Summary      List deactivated users
// @Tags         admin
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=pagination.Page[dto.UserResponse]}
// @Security     BearerAuth
// @Router       /admin/users/deleted [get]
func (h *AdminUserHandler) ListDeletedUsers(c *gin.Context) {
	h.list(c, h.adminService.ListDeletedUsers)
}

// Ban godoc
// @Summary      Ban a user
// @Tags         admin
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      400 {object} response.ErrorResponse "User is already banned or deactivated"
// @Failure      403 {object} response.ErrorResponse "Cannot target own account"
// @Failure      404 {object} response.ErrorResponse "User not found"
// @Security     BearerAuth
// @Router       /admin/users/{userId}/ban [patch]
func (h *AdminUserHandler) Ban(c *gin.Context) {
	h.transition(c, h.adminService.Ban)
}

// Unban godoc
// @Summary      Unban a user
// @Tags         admin
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      400 {object} response.ErrorResponse "User is not banned"
// @Security     BearerAuth
// @Router       /admin/users/{userId}/unban [patch]
func (h *AdminUserHandler) Unban(c *gin.Context) {
	h.transition(c, h.adminService.Unban)
}

// Deactivate godoc
// @Summary      Deactivate a user
// @Description  Anonymizes the profile and keeps a backup so it can be restored
// @Tags         admin
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      400 {object} response.ErrorResponse "User is already deactivated"
// @Security     BearerAuth
// @Router       /admin/users/{userId}/deactivate [patch]
func (h *AdminUserHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.adminService.Deactivate)
}

// Restore godoc
// @Summary      Restore a deactivated user
// @Tags         admin
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      400 {object} response.ErrorResponse "User is not deleted"
// @Failure      409 {object} response.ErrorResponse "Original username or email is now in use"
// @Security     BearerAuth
// @Router       /admin/users/{userId}/restore [patch]
func (h *AdminUserHandler) Restore(c *gin.Context) {
	h.transition(c, h.adminService.Restore)
}

// PermanentDelete godoc
// @Summary      Permanently delete a user
// @Description  The account row is removed. Authored content stays and is shown without an author.
// @Tags         admin
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=response.MessageResponse}
// @Failure      403 {object} response.ErrorResponse "Cannot target own account"
// @Failure      404 {object} response.ErrorResponse "User not found"
// @Security     BearerAuth
// @Router       /admin/users/{userId}/permanent-delete [delete]
func (h *AdminUserHandler) PermanentDelete(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := parseUUIDParam(c, "userId", "user")
	if !ok {
		return
	}

	if err := h.adminService.PermanentDelete(c.Request.Context(), actorID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendMessage(c, http.StatusOK, "User permanently deleted")
}

// Stats godoc
// @Summary      Content counts of a user
// @Tags         admin
// @Produce      json
// @Param        userId path string true "User ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.UserStatsResponse}
// @Failure      404 {object} response.ErrorResponse "User not found"
// @Security     BearerAuth
// @Router       /admin/users/{userId}/stats [get]
func (h *AdminUserHandler) Stats(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "userId", "user")
	if !ok {
		return
	}

	stats, err := h.adminService.Stats(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, stats)
}

func (h *AdminUserHandler) list(c *gin.Context, fn listUsersFunc) {
	var raw pagination.RawQuery
	_ = c.ShouldBindQuery(&raw)

	page, err := fn(c.Request.Context(), raw)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, page)
}

func (h *AdminUserHandler) transition(c *gin.Context, fn transitionFunc) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	userID, ok := parseUUIDParam(c, "userId", "user")
	if !ok {
		return
	}

	user, err := fn(c.Request.Context(), actorID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, user)
}
