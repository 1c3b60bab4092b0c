package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forum-api/internal/domain"
	"forum-api/internal/pagination"
)

// TopicFlag names a moderation flag column
type TopicFlag string

const (
	TopicFlagPinned TopicFlag = "pinned"
	TopicFlagClosed TopicFlag = "closed"
)

// ErrFlagChanged is returned by SetFlag when the flag no longer holds the expected value
var ErrFlagChanged = errors.New("topic flag changed concurrently")

// TopicRepository defines the interface for topic data access
type TopicRepository interface {
	Create(ctx context.Context, topic *domain.Topic) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error)
	ExistsBySlugInThread(ctx context.Context, threadID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, topic *domain.Topic) error
	SetFlag(ctx context.Context, id uuid.UUID, flag TopicFlag, from, to bool) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, threadID uuid.UUID, q pagination.Query) ([]domain.Topic, int64, error)
	Count(ctx context.Context) (int64, error)
}

type topicRepositoryImpl struct {
	db *gorm.DB
}

// NewTopicRepository creates a new instance of TopicRepository
func NewTopicRepository(db *gorm.DB) TopicRepository {
	return &topicRepositoryImpl{db: db}
}

// Create inserts the topic and bumps its thread's topics_count atomically
func (r *topicRepositoryImpl) Create(ctx context.Context, topic *domain.Topic) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Thread", "Author").Create(topic).Error; err != nil {
			return err
		}
		return incrementCounter(tx, &domain.Thread{}, topic.ThreadID, "topics_count")
	})
}

// FindByID loads the topic with its author and thread
func (r *topicRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	var topic domain.Topic
	err := r.db.WithContext(ctx).
		Scopes(withAuthor).
		Preload("Thread").
		Where("id = ?", id).
		First(&topic).Error
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepositoryImpl) ExistsBySlugInThread(ctx context.Context, threadID uuid.UUID, slug string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&domain.Topic{}).Where("thread_id = ? AND slug = ?", threadID, slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes title, slug and content
func (r *topicRepositoryImpl) Update(ctx context.Context, topic *domain.Topic) error {
	return r.db.WithContext(ctx).
		Model(topic).
		Select("title", "slug", "content", "updated_at").
		Updates(topic).Error
}

// SetFlag moves one moderation flag from one value to another, leaving the
// other flag alone
func (r *topicRepositoryImpl) SetFlag(ctx context.Context, id uuid.UUID, flag TopicFlag, from, to bool) error {
	db := r.db.WithContext(ctx)
	column := string(flag)

	result := db.Model(&domain.Topic{}).
		Where("id = ? AND "+column+" = ?", id, from).
		Update(column, to)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&domain.Topic{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return ErrFlagChanged
}

func (r *topicRepositoryImpl) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return incrementCounter(r.db.WithContext(ctx), &domain.Topic{}, id, "views")
}

// List pages over the topics of a thread, pinned topics first
func (r *topicRepositoryImpl) List(ctx context.Context, threadID uuid.UUID, q pagination.Query) ([]domain.Topic, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Topic{}).Where("thread_id = ?", threadID)

	var topics []domain.Topic
	total, err := pagination.Find(base, pagination.Topics, q, &topics, withAuthor)
	if err != nil {
		return nil, 0, err
	}
	return topics, total, nil
}

func (r *topicRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Topic{}).Count(&count).Error
	return count, err
}
