package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"forum-api/internal/domain"
	"forum-api/internal/response"
)

// Context keys set by Auth
const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
	ContextUser     = "user"
)

// Authenticator resolves a raw token to the user it belongs to.
// It returns an *response.AppError when the request must be rejected.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// Auth returns a middleware that loads the caller on every request.
// The token is read from the cookie first, then from the Authorization header.
// Banned and deleted accounts are rejected even with a valid token.
func Auth(authenticator Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c, cookieName)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := authenticator.Authenticate(ctx, token)
		if err != nil {
			var appErr *response.AppError
			if !errors.As(err, &appErr) {
				response.AbortWithError(c, http.StatusInternalServerError, response.ErrCodeInternal, "Internal server error")
				return
			}
			response.AbortWithError(c, response.StatusCode(appErr.Code), appErr.Code, appErr.Message)
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Set(ContextUser, user)

		c.Next()
	}
}

// AdminOnly rejects callers without the admin role. It must run after Auth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextUserRole)
		if r, ok := role.(domain.UserRole); !ok || r != domain.UserRoleAdmin {
			response.AbortWithError(c, http.StatusForbidden, response.ErrCodeForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// UserID returns the id stored by Auth
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func extractToken(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}

	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
