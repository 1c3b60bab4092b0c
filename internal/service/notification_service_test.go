package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"forum-api/internal/domain"
	"forum-api/internal/pagination"
	"forum-api/internal/response"
)

func TestNotificationService_UnreadCountUsesCache(t *testing.T) {
	userID := uuid.New()
	dbCalls := 0
	repo := &MockNotificationRepository{
		CountUnreadFunc: func(ctx context.Context, id uuid.UUID) (int64, error) {
			dbCalls++
			return 3, nil
		},
	}
	cache := NewMockUnreadCountCache()
	svc := NewNotificationService(repo, cache, zap.NewNop())

	// Given a cold cache, the first count hits the database and fills the cache
	first, err := svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), first.Count)

	// Then the second count is served from the cache
	second, err := svc.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), second.Count)
	assert.Equal(t, 1, dbCalls)
	assert.Equal(t, 1, cache.Sets)
}

func TestNotificationService_CacheFailureFallsBack(t *testing.T) {
	repo := &MockNotificationRepository{
		CountUnreadFunc: func(ctx context.Context, id uuid.UUID) (int64, error) {
			return 7, nil
		},
	}
	cache := NewMockUnreadCountCache()
	cache.GetErr = errors.New("connection refused")
	svc := NewNotificationService(repo, cache, zap.NewNop())

	resp, err := svc.UnreadCount(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.Count)
}

func TestNotificationService_WithoutCache(t *testing.T) {
	repo := &MockNotificationRepository{
		CountUnreadFunc: func(ctx context.Context, id uuid.UUID) (int64, error) {
			return 2, nil
		},
	}
	svc := NewNotificationService(repo, nil, zap.NewNop())

	resp, err := svc.UnreadCount(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Count)
	require.NoError(t, svc.Notify(context.Background(), uuid.New(), domain.NotificationTypeComment, "hello"))
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	userID := uuid.New()
	unread := &domain.Notification{BaseModel: domain.BaseModel{ID: uuid.New()}, UserID: userID}
	read := &domain.Notification{BaseModel: domain.BaseModel{ID: uuid.New()}, UserID: userID, IsRead: true}

	repo := &MockNotificationRepository{
		FindByIDAndUserIDFunc: func(ctx context.Context, id, uid uuid.UUID) (*domain.Notification, error) {
			switch id {
			case unread.ID:
				return unread, nil
			case read.ID:
				return read, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	cache := NewMockUnreadCountCache()
	svc := NewNotificationService(repo, cache, zap.NewNop())
	ctx := context.Background()

	tests := []struct {
		name    string
		id      uuid.UUID
		code    string
		message string
	}{
		{name: "unread", id: unread.ID},
		{name: "already read", id: read.ID, code: response.ErrCodeInvalidState, message: "Notification already marked as read"},
		{name: "missing", id: uuid.New(), code: response.ErrCodeNotFound, message: "Notification not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.MarkAsRead(ctx, userID, tt.id)
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			assertAppError(t, err, tt.code, tt.message)
		})
	}
	assert.Equal(t, []uuid.UUID{userID}, cache.Invalidated)
}

func TestNotificationService_ListAndMarkAll(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.user(t, "palmlover")
	for i := 0; i < 3; i++ {
		require.NoError(t, env.notifications.Notify(ctx, user.ID, domain.NotificationTypeComment, "New comment on your topic"))
	}

	page, err := env.notifications.ListUnread(ctx, user.ID, pagination.RawQuery{Limit: "2"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)

	require.NoError(t, env.notifications.MarkAsRead(ctx, user.ID, page.Items[0].ID))

	all, err := env.notifications.MarkAllAsRead(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Updated)

	count, err := env.notifications.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, count.Count)
}
