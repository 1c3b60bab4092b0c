package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"forum-api/internal/domain"
	"forum-api/internal/dto"
	"forum-api/internal/pagination"
	"forum-api/internal/repository"
	"forum-api/internal/response"
)

// UnreadCountCache stores per-user unread notification counts
type UnreadCountCache interface {
	Get(ctx context.Context, userID uuid.UUID) (count int64, ok bool, err error)
	Set(ctx context.Context, userID uuid.UUID, count int64) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

const unreadCountKeyPrefix = "forum:notifications:unread:"

type redisUnreadCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisUnreadCountCache caches unread counts in redis for ttl
func NewRedisUnreadCountCache(client *redis.Client, ttl time.Duration) UnreadCountCache {
	return &redisUnreadCountCache{client: client, ttl: ttl}
}

func unreadCountKey(userID uuid.UUID) string {
	return unreadCountKeyPrefix + userID.String()
}

func (c *redisUnreadCountCache) Get(ctx context.Context, userID uuid.UUID) (int64, bool, error) {
	val, err := c.client.Get(ctx, unreadCountKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt unread count %q: %w", val, err)
	}
	return count, true, nil
}

func (c *redisUnreadCountCache) Set(ctx context.Context, userID uuid.UUID, count int64) error {
	return c.client.Set(ctx, unreadCountKey(userID), count, c.ttl).Err()
}

func (c *redisUnreadCountCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, unreadCountKey(userID)).Err()
}

// NotificationService defines the interface for notification business logic
type NotificationService interface {
	Notify(ctx context.Context, userID uuid.UUID, kind domain.NotificationType, message string) error
	ListUnread(ctx context.Context, userID uuid.UUID, raw pagination.RawQuery) (*pagination.Page[dto.NotificationResponse], error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error)
	MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (*dto.MarkAllReadResponse, error)
	Forget(ctx context.Context, userID uuid.UUID) error
}

// notificationServiceImpl is the implementation of NotificationService
type notificationServiceImpl struct {
	notificationRepo repository.NotificationRepository
	cache            UnreadCountCache
	logger           *zap.Logger
}

// NewNotificationService creates a new instance of NotificationService.
// cache may be nil, in which case every count hits the database.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	cache UnreadCountCache,
	logger *zap.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		cache:            cache,
		logger:           logger,
	}
}

// Notify stores a notification for the user
func (s *notificationServiceImpl) Notify(ctx context.Context, userID uuid.UUID, kind domain.NotificationType, message string) error {
	notification := &domain.Notification{
		UserID:  userID,
		Type:    kind,
		Message: message,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return response.NewInternalError("Failed to create notification", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

// ListUnread pages over the user's unread notifications
func (s *notificationServiceImpl) ListUnread(ctx context.Context, userID uuid.UUID, raw pagination.RawQuery) (*pagination.Page[dto.NotificationResponse], error) {
	q, err := pagination.Parse(raw, pagination.Notifications)
	if err != nil {
		return nil, err
	}

	notifications, total, err := s.notificationRepo.ListUnread(ctx, userID, q)
	if err != nil {
		return nil, response.NewInternalError("Failed to list notifications", err)
	}

	items := make([]dto.NotificationResponse, len(notifications))
	for i := range notifications {
		items[i] = dto.NewNotificationResponse(&notifications[i])
	}
	page := pagination.NewPage(items, total, q)
	return &page, nil
}

// UnreadCount returns the unread count, served from the cache when possible
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID uuid.UUID) (*dto.UnreadCountResponse, error) {
	if s.cache != nil {
		count, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			s.logger.Warn("Unread count cache read failed", zap.String("user_id", userID.String()), zap.Error(err))
		} else if ok {
			return &dto.UnreadCountResponse{Count: count}, nil
		}
	}

	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, response.NewInternalError("Failed to count notifications", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, count); err != nil {
			s.logger.Warn("Unread count cache write failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	return &dto.UnreadCountResponse{Count: count}, nil
}

// MarkAsRead flags one of the user's notifications as read
func (s *notificationServiceImpl) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	notification, err := s.notificationRepo.FindByIDAndUserID(ctx, notificationID, userID)
	if err != nil {
		return lookupError(err, "Notification not found", "Failed to load notification")
	}
	if notification.IsRead {
		return response.NewInvalidStateError("Notification already marked as read", "")
	}

	if err := s.notificationRepo.MarkAsRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// marked read concurrently
			return response.NewInvalidStateError("Notification already marked as read", "")
		}
		return response.NewInternalError("Failed to update notification", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

// MarkAllAsRead flags every unread notification of the user
func (s *notificationServiceImpl) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (*dto.MarkAllReadResponse, error) {
	updated, err := s.notificationRepo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return nil, response.NewInternalError("Failed to update notifications", err)
	}
	s.invalidate(ctx, userID)
	return &dto.MarkAllReadResponse{Updated: updated}, nil
}

// Forget removes every notification of a user that no longer exists
func (s *notificationServiceImpl) Forget(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.notificationRepo.DeleteByUserID(ctx, userID); err != nil {
		return response.NewInternalError("Failed to delete notifications", err)
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *notificationServiceImpl) invalidate(ctx context.Context, userID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("Unread count cache invalidation failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}
