package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forum-api/internal/domain"
	"forum-api/internal/pagination"
)

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	List(ctx context.Context, topicID uuid.UUID, q pagination.Query) ([]domain.Comment, int64, error)
}

type commentRepositoryImpl struct {
	db *gorm.DB
}

// NewCommentRepository creates a new instance of CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepositoryImpl{db: db}
}

// Create inserts the comment and bumps its topic's comments_count atomically
func (r *commentRepositoryImpl) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Topic", "Author").Create(comment).Error; err != nil {
			return err
		}
		return incrementCounter(tx, &domain.Topic{}, comment.TopicID, "comments_count")
	})
}

func (r *commentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.db.WithContext(ctx).Scopes(withAuthor).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepositoryImpl) Update(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).
		Model(comment).
		Select("content", "updated_at").
		Updates(comment).Error
}

func (r *commentRepositoryImpl) List(ctx context.Context, topicID uuid.UUID, q pagination.Query) ([]domain.Comment, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Comment{}).Where("topic_id = ?", topicID)

	var comments []domain.Comment
	total, err := pagination.Find(base, pagination.Comments, q, &comments, withAuthor)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}
