package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forum-api/internal/domain"
	"forum-api/internal/pagination"
)

// ThreadRepository defines the interface for thread data access
type ThreadRepository interface {
	Create(ctx context.Context, thread *domain.Thread) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Thread, error)
	FindInSection(ctx context.Context, sectionID, threadID uuid.UUID) (*domain.Thread, error)
	ExistsByTitle(ctx context.Context, title string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, thread *domain.Thread, fromSectionID uuid.UUID) error
	List(ctx context.Context, sectionID uuid.UUID, q pagination.Query) ([]domain.Thread, int64, error)
	Count(ctx context.Context) (int64, error)
}

type threadRepositoryImpl struct {
	db *gorm.DB
}

// NewThreadRepository creates a new instance of ThreadRepository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepositoryImpl{db: db}
}

// Create inserts the thread and bumps its section's threads_count atomically
func (r *threadRepositoryImpl) Create(ctx context.Context, thread *domain.Thread) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Section").Create(thread).Error; err != nil {
			return err
		}
		return incrementCounter(tx, &domain.Section{}, thread.SectionID, "threads_count")
	})
}

func (r *threadRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Thread, error) {
	var thread domain.Thread
	if err := r.db.WithContext(ctx).Preload("Section").Where("id = ?", id).First(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

// FindInSection finds a thread only if it belongs to the section
func (r *threadRepositoryImpl) FindInSection(ctx context.Context, sectionID, threadID uuid.UUID) (*domain.Thread, error) {
	var thread domain.Thread
	err := r.db.WithContext(ctx).
		Preload("Section").
		Where("id = ? AND section_id = ?", threadID, sectionID).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepositoryImpl) ExistsByTitle(ctx context.Context, title string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&domain.Thread{}).Where("title = ?", title)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes the editable columns. When the thread moved out of
// fromSectionID, both sections' threads_count follow it in the same transaction.
// topics_count is owned by the topic repository.
func (r *threadRepositoryImpl) Update(ctx context.Context, thread *domain.Thread, fromSectionID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(thread).
			Select("section_id", "title", "slug", "position", "description", "updated_at").
			Updates(thread).Error
		if err != nil {
			return err
		}
		if fromSectionID == thread.SectionID {
			return nil
		}
		if err := decrementCounter(tx, &domain.Section{}, fromSectionID, "threads_count"); err != nil {
			return err
		}
		return incrementCounter(tx, &domain.Section{}, thread.SectionID, "threads_count")
	})
}

// List pages over threads; sectionID uuid.Nil lists every section
func (r *threadRepositoryImpl) List(ctx context.Context, sectionID uuid.UUID, q pagination.Query) ([]domain.Thread, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.Thread{})
	if sectionID != uuid.Nil {
		base = base.Where("section_id = ?", sectionID)
	}

	var threads []domain.Thread
	total, err := pagination.Find(base, pagination.Threads, q, &threads, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Section")
	})
	if err != nil {
		return nil, 0, err
	}
	return threads, total, nil
}

func (r *threadRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Thread{}).Count(&count).Error
	return count, err
}
