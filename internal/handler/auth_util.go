package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"forum-api/internal/middleware"
	"forum-api/internal/response"
)

// CookieConfig describes the session cookie carrying the token
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// currentUserID extracts the caller id stored by the auth middleware
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.SendError(c, http.StatusUnauthorized, response.ErrCodeUnauthorized, "Not authorized")
		return uuid.Nil, false
	}
	return userID, true
}

func setTokenCookie(c *gin.Context, cfg CookieConfig, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Name, token, int(cfg.MaxAge.Seconds()), "/", "", cfg.Secure, true)
}

func clearTokenCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cfg.Name, "", -1, "/", "", cfg.Secure, true)
}
