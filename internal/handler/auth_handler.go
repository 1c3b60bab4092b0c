package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forum-api/internal/dto"
	"forum-api/internal/response"
	"forum-api/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
	cookie      CookieConfig
}

func NewAuthHandler(authService service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
	}
}

// Register godoc
// @Summary      Register
// @Description  Creates an account and starts a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "Account details"
// @Success      201 {object} response.SuccessResponse{data=dto.AuthResponse}
// @Failure      400 {object} response.ErrorResponse "Invalid request body"
// @Failure      409 {object} response.ErrorResponse "Username or email already taken"
// @Failure      429 {object} response.ErrorResponse "Too many requests"
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	setTokenCookie(c, h.cookie, resp.Token)
	response.SendSuccess(c, http.StatusCreated, resp)
}

// Login godoc
// @Summary      Login
// @Description  Verifies credentials and starts a session. Banned and deleted accounts are refused.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "Credentials"
// @Success      200 {object} response.SuccessResponse{data=dto.AuthResponse}
// @Failure      401 {object} response.ErrorResponse "Invalid email or password"
// @Failure      403 {object} response.ErrorResponse "Account banned or deleted"
// @Failure      429 {object} response.ErrorResponse "Too many requests"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	setTokenCookie(c, h.cookie, resp.Token)
	response.SendSuccess(c, http.StatusOK, resp)
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=response.MessageResponse}
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	clearTokenCookie(c, h.cookie)
	response.SendMessage(c, http.StatusOK, "Logged out successfully")
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.SuccessResponse{data=dto.UserResponse}
// @Failure      401 {object} response.ErrorResponse "Not authorized"
// @Failure      403 {object} response.ErrorResponse "Account banned or deleted"
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, user)
}
