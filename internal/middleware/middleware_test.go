package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/internal/domain"
	"forum-api/internal/metrics"
	"forum-api/internal/response"
)

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, token string) (*domain.User, error)
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	return m.AuthenticateFunc(ctx, token)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuth(t *testing.T) {
	active := &domain.User{BaseModel: domain.BaseModel{ID: uuid.New()}, Role: domain.UserRoleUser, Status: domain.UserStatusActive}

	authenticator := &MockAuthenticator{
		AuthenticateFunc: func(ctx context.Context, token string) (*domain.User, error) {
			switch token {
			case "":
				return nil, response.NewUnauthorizedError("Not authorized", "no token")
			case "good":
				return active, nil
			case "banned":
				return nil, response.NewForbiddenError("Your account is banned", "")
			case "broken":
				return nil, errors.New("database is down")
			}
			return nil, response.NewUnauthorizedError("Not authorized", "invalid or expired token")
		},
	}

	router := gin.New()
	router.Use(Auth(authenticator, "token"))
	router.GET("/me", func(c *gin.Context) {
		id, ok := UserID(c)
		require.True(t, ok)
		role, _ := c.Get(ContextUserRole)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})

	tests := []struct {
		name   string
		cookie string
		header string
		status int
		code   string
	}{
		{name: "no token", status: http.StatusUnauthorized, code: response.ErrCodeUnauthorized},
		{name: "cookie", cookie: "good", status: http.StatusOK},
		{name: "bearer header", header: "Bearer good", status: http.StatusOK},
		{name: "lowercase bearer", header: "bearer good", status: http.StatusOK},
		{name: "cookie wins over header", cookie: "good", header: "Bearer expired", status: http.StatusOK},
		{name: "malformed header", header: "Token good", status: http.StatusUnauthorized, code: response.ErrCodeUnauthorized},
		{name: "invalid token", header: "Bearer expired", status: http.StatusUnauthorized, code: response.ErrCodeUnauthorized},
		{name: "banned account", cookie: "banned", status: http.StatusForbidden, code: response.ErrCodeForbidden},
		{name: "unexpected failure", cookie: "broken", status: http.StatusInternalServerError, code: response.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, w).Error.Code)
			}
		})
	}
}

func TestAdminOnly(t *testing.T) {
	newRouter := func(role domain.UserRole) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if role != "" {
				c.Set(ContextUserRole, role)
			}
			c.Next()
		})
		router.Use(AdminOnly())
		router.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	tests := []struct {
		name   string
		role   domain.UserRole
		status int
	}{
		{name: "admin", role: domain.UserRoleAdmin, status: http.StatusOK},
		{name: "user", role: domain.UserRoleUser, status: http.StatusForbidden},
		{name: "anonymous", status: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tt.role).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextRequestID))
	})

	// Given no header, an id is generated and echoed
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	generated := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	// Given a caller id, it is kept
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Recovery(zap.NewNop()))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, response.ErrCodeInternal, body.Error.Code)
	assert.NotEmpty(t, body.RequestID)
}

func TestLogger(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Logger(zap.NewNop()))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	router.GET("/err", func(c *gin.Context) {
		_ = c.Error(errors.New("failed"))
		c.Status(http.StatusInternalServerError)
	})

	for _, path := range []string{"/ok", "/bad", "/err", "/health"} {
		w := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path+"?q=palms", nil))
		})
	}
}

func TestMetrics(t *testing.T) {
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/api/v1/sections/:sectionId", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sections/"+uuid.NewString(), nil))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	// Then requests are labeled by route pattern and probes are skipped
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/sections/:sectionId", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "4xx")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/health", "2xx")))
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(nil, RateLimitRule{
		Name:    "auth",
		Limit:   2,
		Window:  time.Minute,
		Message: "Too many requests. Try again in 15 minutes.",
	}, zap.NewNop()))
	router.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, response.ErrCodeRateLimited, body.Error.Code)
	assert.Equal(t, "Too many requests. Try again in 15 minutes.", body.Error.Message)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"http://localhost:3000"}))
	router.GET("/sections", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/sections", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/sections", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
