package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"forum-api/internal/auth"
	"forum-api/internal/client"
	"forum-api/internal/config"
	"forum-api/internal/database"
	"forum-api/internal/handler"
	"forum-api/internal/metrics"
	"forum-api/internal/middleware"
	"forum-api/internal/repository"
	"forum-api/internal/service"
)

// Config holds router configuration
type Config struct {
	DB       *gorm.DB
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Redis    *redis.Client
	S3Client client.S3ClientInterface
	Mailer   client.Mailer
	Tokens   *auth.TokenManager

	BasePath       string
	ClientURL      string
	Production     bool
	CookieName     string
	CORSOrigins    []string
	MaxAvatarBytes int64
	UnreadCacheTTL time.Duration
	RateLimit      config.RateLimitConfig
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metricsHandler := gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.GET("/metrics", metricsHandler)
	if cfg.BasePath != "" {
		r.GET(cfg.BasePath+"/metrics", metricsHandler)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "forum-api"})
	})
	r.GET("/ready", readiness(cfg))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Initialize repositories
	userRepo := repository.NewUserRepository(cfg.DB)
	sectionRepo := repository.NewSectionRepository(cfg.DB)
	threadRepo := repository.NewThreadRepository(cfg.DB)
	topicRepo := repository.NewTopicRepository(cfg.DB)
	commentRepo := repository.NewCommentRepository(cfg.DB)
	notificationRepo := repository.NewNotificationRepository(cfg.DB)
	cascadeRepo := repository.NewCascadeRepository(cfg.DB)

	// Initialize services
	var unreadCache service.UnreadCountCache
	if cfg.Redis != nil {
		unreadCache = service.NewRedisUnreadCountCache(cfg.Redis, cfg.UnreadCacheTTL)
	}
	notificationService := service.NewNotificationService(notificationRepo, unreadCache, cfg.Logger)
	authService := service.NewAuthService(userRepo, cfg.Tokens, cfg.Metrics, cfg.Logger)
	userService := service.NewUserService(
		userRepo,
		notificationService,
		cfg.S3Client,
		cfg.Mailer,
		service.UserServiceConfig{
			ClientURL:        cfg.ClientURL,
			ExposeResetToken: !cfg.Production,
			MaxAvatarBytes:   cfg.MaxAvatarBytes,
		},
		cfg.Metrics,
		cfg.Logger,
	)
	adminUserService := service.NewAdminUserService(userRepo, notificationService, cfg.S3Client, cfg.Metrics, cfg.Logger)
	sectionService := service.NewSectionService(sectionRepo, cascadeRepo, cfg.Metrics, cfg.Logger)
	threadService := service.NewThreadService(threadRepo, sectionRepo, cascadeRepo, cfg.Metrics, cfg.Logger)
	topicService := service.NewTopicService(topicRepo, threadRepo, cascadeRepo, cfg.Metrics, cfg.Logger)
	commentService := service.NewCommentService(commentRepo, topicRepo, cascadeRepo, notificationService, cfg.Metrics, cfg.Logger)

	// Initialize handlers
	cookie := handler.CookieConfig{
		Name:   cfg.CookieName,
		MaxAge: cfg.Tokens.TTL(),
		Secure: cfg.Production,
	}
	authHandler := handler.NewAuthHandler(authService, cookie)
	userHandler := handler.NewUserHandler(userService, cookie)
	sectionHandler := handler.NewSectionHandler(sectionService)
	threadHandler := handler.NewThreadHandler(threadService)
	topicHandler := handler.NewTopicHandler(topicService)
	commentHandler := handler.NewCommentHandler(commentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	adminUserHandler := handler.NewAdminUserHandler(adminUserService)

	authMiddleware := middleware.Auth(authService, cfg.CookieName)
	limit := rateLimiters(cfg)

	api := r.Group(cfg.BasePath)
	api.Use(limit.api)

	// ============================================================
	// Auth routes
	// ============================================================
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", limit.signup, authHandler.Register)
		authGroup.POST("/login", limit.auth, authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authMiddleware, authHandler.Me)
	}

	// ============================================================
	// Account routes
	// ============================================================
	users := api.Group("/users")
	{
		users.POST("/forgot-password", limit.auth, userHandler.ForgotPassword)
		users.POST("/reset-password/:token", limit.auth, userHandler.ResetPassword)

		me := users.Group("/me", authMiddleware)
		me.PATCH("", userHandler.UpdateProfile)
		me.DELETE("", userHandler.DeleteAccount)
		me.PATCH("/avatar", userHandler.UploadAvatar)
		me.PATCH("/password", userHandler.ChangePassword)
	}

	// ============================================================
	// Forum routes: reads are public, writes need a session
	// ============================================================
	sections := api.Group("/sections")
	{
		sections.GET("", sectionHandler.ListSections)
		sections.GET("/:sectionId", sectionHandler.GetSection)
	}

	threads := api.Group("/threads")
	{
		threads.GET("/all", threadHandler.ListAllThreads)
		threads.GET("/:sectionId", threadHandler.ListSectionThreads)
		threads.GET("/:sectionId/:threadId", threadHandler.GetThread)
	}

	topics := api.Group("/topics")
	{
		topics.POST("/thread/:threadId", authMiddleware, topicHandler.CreateTopic)
		topics.GET("/thread/:threadId", topicHandler.ListTopics)
		topics.GET("/:topicId", topicHandler.GetTopic)
		topics.PATCH("/:topicId", authMiddleware, topicHandler.UpdateTopic)
		topics.DELETE("/:topicId", authMiddleware, topicHandler.DeleteTopic)
	}

	comments := api.Group("/comments")
	{
		comments.POST("/topic/:topicId", authMiddleware, commentHandler.CreateComment)
		comments.GET("/topic/:topicId", commentHandler.ListComments)
		comments.GET("/:commentId", commentHandler.GetComment)
		comments.PATCH("/:commentId", authMiddleware, commentHandler.UpdateComment)
		comments.DELETE("/:commentId", authMiddleware, commentHandler.DeleteComment)
	}

	notifications := api.Group("/user/notifications", authMiddleware)
	{
		notifications.GET("/unread", notificationHandler.ListUnread)
		notifications.GET("/unread/count", notificationHandler.UnreadCount)
		notifications.PATCH("/read-all", notificationHandler.MarkAllAsRead)
		notifications.PATCH("/:id/read", notificationHandler.MarkAsRead)
	}

	// ============================================================
	// Admin routes
	// ============================================================
	admin := api.Group("/admin", authMiddleware, middleware.AdminOnly())
	{
		admin.POST("/sections", sectionHandler.CreateSection)
		admin.PATCH("/sections/:sectionId", sectionHandler.UpdateSection)
		admin.DELETE("/sections/:sectionId", sectionHandler.DeleteSection)

		admin.POST("/threads", threadHandler.CreateThread)
		admin.PATCH("/threads/:sectionId/:threadId", threadHandler.UpdateThread)
		admin.DELETE("/threads/:sectionId/:threadId", threadHandler.DeleteThread)

		admin.PATCH("/topics/:topicId/close", topicHandler.CloseTopic)
		admin.PATCH("/topics/:topicId/open", topicHandler.OpenTopic)
		admin.PATCH("/topics/:topicId/toggle-pin", topicHandler.TogglePin)
		admin.DELETE("/topics/:topicId", topicHandler.AdminDeleteTopic)

		admin.DELETE("/comments/:commentId", commentHandler.AdminDeleteComment)

		admin.GET("/users", adminUserHandler.ListUsers)
		admin.GET("/users/banned", adminUserHandler.ListBannedUsers)
		admin.GET("/users/deleted", adminUserHandler.ListDeletedUsers)
		admin.GET("/users/:userId/stats", adminUserHandler.Stats)
		admin.PATCH("/users/:userId/ban", adminUserHandler.Ban)
		admin.PATCH("/users/:userId/unban", adminUserHandler.Unban)
		admin.PATCH("/users/:userId/deactivate", adminUserHandler.Deactivate)
		admin.PATCH("/users/:userId/restore", adminUserHandler.Restore)
		admin.DELETE("/users/:userId/permanent-delete", adminUserHandler.PermanentDelete)
	}

	return r
}

type limiters struct {
	api    gin.HandlerFunc
	auth   gin.HandlerFunc
	signup gin.HandlerFunc
}

func rateLimiters(cfg Config) limiters {
	if !cfg.RateLimit.Enabled {
		pass := func(c *gin.Context) { c.Next() }
		return limiters{api: pass, auth: pass, signup: pass}
	}

	return limiters{
		api: middleware.RateLimit(cfg.Redis, middleware.RateLimitRule{
			Name:    "api",
			Limit:   cfg.RateLimit.APILimit,
			Window:  cfg.RateLimit.APIWindow,
			Message: "Too many requests. Try again later.",
		}, cfg.Logger),
		auth: middleware.RateLimit(cfg.Redis, middleware.RateLimitRule{
			Name:    "auth",
			Limit:   cfg.RateLimit.AuthLimit,
			Window:  cfg.RateLimit.AuthWindow,
			Message: "Too many requests. Try again in 15 minutes.",
		}, cfg.Logger),
		signup: middleware.RateLimit(cfg.Redis, middleware.RateLimitRule{
			Name:    "signup",
			Limit:   cfg.RateLimit.SignupLimit,
			Window:  cfg.RateLimit.SignupWindow,
			Message: "Too many accounts created from this IP. Try again later.",
		}, cfg.Logger),
	}
}

func readiness(cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if cfg.DB == nil || database.Ping(ctx, cfg.DB) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "service": "forum-api", "database": "down"})
			return
		}
		if cfg.Redis != nil {
			if err := cfg.Redis.Ping(ctx).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "service": "forum-api", "redis": "down"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "service": "forum-api"})
	}
}
