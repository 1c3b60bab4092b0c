package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"forum-api/internal/domain"
	"forum-api/internal/pagination"
)

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	CreateFunc            func(ctx context.Context, notification *domain.Notification) error
	FindByIDAndUserIDFunc func(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error)
	ListUnreadFunc        func(ctx context.Context, userID uuid.UUID, q pagination.Query) ([]domain.Notification, int64, error)
	CountUnreadFunc       func(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkAsReadFunc        func(ctx context.Context, id, userID uuid.UUID) error
	MarkAllAsReadFunc     func(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteByUserIDFunc    func(ctx context.Context, userID uuid.UUID) (int64, error)
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, notification)
	}
	return nil
}

func (m *MockNotificationRepository) FindByIDAndUserID(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	if m.FindByIDAndUserIDFunc != nil {
		return m.FindByIDAndUserIDFunc(ctx, id, userID)
	}
	return nil, nil
}

func (m *MockNotificationRepository) ListUnread(ctx context.Context, userID uuid.UUID, q pagination.Query) ([]domain.Notification, int64, error) {
	if m.ListUnreadFunc != nil {
		return m.ListUnreadFunc(ctx, userID, q)
	}
	return nil, 0, nil
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.CountUnreadFunc != nil {
		return m.CountUnreadFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	if m.MarkAsReadFunc != nil {
		return m.MarkAsReadFunc(ctx, id, userID)
	}
	return nil
}

func (m *MockNotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.MarkAllAsReadFunc != nil {
		return m.MarkAllAsReadFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockNotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *MockNotificationRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	if m.DeleteByUserIDFunc != nil {
		return m.DeleteByUserIDFunc(ctx, userID)
	}
	return 0, nil
}

// MockUnreadCountCache is an in-memory UnreadCountCache that records calls
type MockUnreadCountCache struct {
	GetErr error

	mu          sync.Mutex
	values      map[uuid.UUID]int64
	Gets        int
	Sets        int
	Invalidated []uuid.UUID
}

func NewMockUnreadCountCache() *MockUnreadCountCache {
	return &MockUnreadCountCache{values: make(map[uuid.UUID]int64)}
}

func (m *MockUnreadCountCache) Get(ctx context.Context, userID uuid.UUID) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Gets++
	if m.GetErr != nil {
		return 0, false, m.GetErr
	}
	v, ok := m.values[userID]
	return v, ok, nil
}

func (m *MockUnreadCountCache) Set(ctx context.Context, userID uuid.UUID, count int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sets++
	m.values[userID] = count
	return nil
}

func (m *MockUnreadCountCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, userID)
	m.Invalidated = append(m.Invalidated, userID)
	return nil
}
