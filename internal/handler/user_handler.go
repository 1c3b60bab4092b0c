package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forum-api/internal/dto"
	"forum-api/internal/response"
	"forum-api/internal/service"
)

// UserHandler serves the self-service account endpoints
type UserHandler struct {
	userService service.UserService
	cookie      CookieConfig
}

func NewUserHandler(userService service.UserService, cookie CookieConfig) *UserHandler {
	return &UserHandler{
		userService: userService,
		cookie:      cookie,
	}
}

// UpdateProfile godoc
// @Summary      Update profile
// @Description  Changes any of the profile fields. Username and email must stay unique.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body dto.UpdateProfileRequest true "Fields to change"
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      400 {object} response.ErrorResponse "No changes or invalid body"
// @Failure      409 {object} response.ErrorResponse "Username or email already taken"
// @Security     BearerAuth
// @Router       /users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, user)
}

// UploadAvatar godoc
// @Summary      Upload avatar
// @Description  Stores a new avatar image and drops the previous one
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        avatar formData file true "Image (jpeg, png, gif or webp)"
// @Success      200 {object} response.SuccessResponse{data=dto.AvatarResponse}
// @Failure      400 {object} response.ErrorResponse "Missing, unsupported or oversized image"
// @Security     BearerAuth
// @Router       /users/me/avatar [patch]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	header, err := c.FormFile("avatar")
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Avatar file is required")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Could not read avatar file")
		return
	}
	defer file.Close()

	resp, err := h.userService.UploadAvatar(c.Request.Context(), userID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, resp)
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Requires the current password. The session cookie is cleared on success.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body dto.ChangePasswordRequest true "Passwords"
// @Success      200 {object} response.SuccessResponse{data=response.MessageResponse}
// @Failure      400 {object} response.ErrorResponse "Incorrect current password or passwords do not match"
// @Security     BearerAuth
// @Router       /users/me/password [patch]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		handleServiceError(c, err)
		return
	}

	clearTokenCookie(c, h.cookie)
	response.SendMessage(c, http.StatusOK, "Password updated successfully. Please log in again")
}

// DeleteAccount godoc
// @Summary      Delete own account
// @Description  Permanently removes the account. Authored content stays, shown without an author.
// @Tags         users
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=response.MessageResponse}
// @Security     BearerAuth
// @Router       /users/me [delete]
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	clearTokenCookie(c, h.cookie)
	response.SendMessage(c, http.StatusOK, "Account deleted successfully")
}

// ForgotPassword godoc
// @Summary      Request a password reset
// @Description  Always answers the same way whether or not the email is registered
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body dto.ForgotPasswordRequest true "Email"
// @Success      200 {object} response.SuccessResponse{data=dto.ForgotPasswordResponse}
// @Router       /users/forgot-password [post]
func (h *UserHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.userService.ForgotPassword(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, resp)
}

// ResetPassword godoc
// @Summary      Reset password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        token path string true "Reset token"
// @Param        request body dto.ResetPasswordRequest true "New password"
// @Success      200 {object} response.SuccessResponse{data=response.MessageResponse}
// @Failure      401 {object} response.ErrorResponse "Invalid or expired reset token"
// @Router       /users/reset-password/{token} [post]
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), c.Param("token"), &req); err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendMessage(c, http.StatusOK, "Password reset successfully")
}
