package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forum-api/internal/domain"
)

// CascadeResult counts the descendants removed together with a root
type CascadeResult struct {
	Threads  int64
	Topics   int64
	Comments int64
}

// CascadeRepository removes a content root together with everything it owns.
// Each call runs in one transaction: a missing root or any failed step leaves
// the data untouched. The root is returned as it was before deletion.
type CascadeRepository interface {
	DeleteSection(ctx context.Context, id uuid.UUID) (*domain.Section, CascadeResult, error)
	DeleteThread(ctx context.Context, id uuid.UUID) (*domain.Thread, CascadeResult, error)
	DeleteTopic(ctx context.Context, id uuid.UUID) (*domain.Topic, CascadeResult, error)
	DeleteComment(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
}

type cascadeRepositoryImpl struct {
	db *gorm.DB
}

// NewCascadeRepository creates a new instance of CascadeRepository
func NewCascadeRepository(db *gorm.DB) CascadeRepository {
	return &cascadeRepositoryImpl{db: db}
}

// DeleteSection removes comments, topics and threads of the section, then the section
func (r *cascadeRepositoryImpl) DeleteSection(ctx context.Context, id uuid.UUID) (*domain.Section, CascadeResult, error) {
	var (
		section domain.Section
		result  CascadeResult
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&section).Error; err != nil {
			return err
		}

		threadIDs := func() *gorm.DB {
			return tx.Model(&domain.Thread{}).Select("id").Where("section_id = ?", id)
		}
		topicIDs := tx.Model(&domain.Topic{}).Select("id").Where("thread_id IN (?)", threadIDs())

		comments := tx.Where("topic_id IN (?)", topicIDs).Delete(&domain.Comment{})
		if comments.Error != nil {
			return comments.Error
		}
		result.Comments = comments.RowsAffected

		topics := tx.Where("thread_id IN (?)", threadIDs()).Delete(&domain.Topic{})
		if topics.Error != nil {
			return topics.Error
		}
		result.Topics = topics.RowsAffected

		threads := tx.Where("section_id = ?", id).Delete(&domain.Thread{})
		if threads.Error != nil {
			return threads.Error
		}
		result.Threads = threads.RowsAffected

		return tx.Where("id = ?", id).Delete(&domain.Section{}).Error
	})
	if err != nil {
		return nil, CascadeResult{}, err
	}
	return &section, result, nil
}

// DeleteThread removes the comments and topics of the thread, then the thread,
// and decrements the section's threads_count.
func (r *cascadeRepositoryImpl) DeleteThread(ctx context.Context, id uuid.UUID) (*domain.Thread, CascadeResult, error) {
	var (
		thread domain.Thread
		result CascadeResult
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&thread).Error; err != nil {
			return err
		}

		topicIDs := tx.Model(&domain.Topic{}).Select("id").Where("thread_id = ?", id)
		comments := tx.Where("topic_id IN (?)", topicIDs).Delete(&domain.Comment{})
		if comments.Error != nil {
			return comments.Error
		}
		result.Comments = comments.RowsAffected

		topics := tx.Where("thread_id = ?", id).Delete(&domain.Topic{})
		if topics.Error != nil {
			return topics.Error
		}
		result.Topics = topics.RowsAffected

		if err := tx.Where("id = ?", id).Delete(&domain.Thread{}).Error; err != nil {
			return err
		}
		return decrementCounter(tx, &domain.Section{}, thread.SectionID, "threads_count")
	})
	if err != nil {
		return nil, CascadeResult{}, err
	}
	return &thread, result, nil
}

// DeleteTopic removes the comments of the topic, then the topic, and
// decrements the thread's topics_count.
func (r *cascadeRepositoryImpl) DeleteTopic(ctx context.Context, id uuid.UUID) (*domain.Topic, CascadeResult, error) {
	var (
		topic  domain.Topic
		result CascadeResult
	)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&topic).Error; err != nil {
			return err
		}

		comments := tx.Where("topic_id = ?", id).Delete(&domain.Comment{})
		if comments.Error != nil {
			return comments.Error
		}
		result.Comments = comments.RowsAffected

		if err := tx.Where("id = ?", id).Delete(&domain.Topic{}).Error; err != nil {
			return err
		}
		return decrementCounter(tx, &domain.Thread{}, topic.ThreadID, "topics_count")
	})
	if err != nil {
		return nil, CascadeResult{}, err
	}
	return &topic, result, nil
}

// DeleteComment removes the comment and decrements the topic's comments_count
func (r *cascadeRepositoryImpl) DeleteComment(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&comment).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return err
		}
		return decrementCounter(tx, &domain.Topic{}, comment.TopicID, "comments_count")
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
