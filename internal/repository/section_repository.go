package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forum-api/internal/domain"
	"forum-api/internal/pagination"
)

// SectionRepository defines the interface for section data access
type SectionRepository interface {
	Create(ctx context.Context, section *domain.Section) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Section, error)
	ExistsByTitleOrSlug(ctx context.Context, title, slug string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, section *domain.Section) error
	List(ctx context.Context, q pagination.Query) ([]domain.Section, int64, error)
	Count(ctx context.Context) (int64, error)
}

type sectionRepositoryImpl struct {
	db *gorm.DB
}

// NewSectionRepository creates a new instance of SectionRepository
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepositoryImpl{db: db}
}

func (r *sectionRepositoryImpl) Create(ctx context.Context, section *domain.Section) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *sectionRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Section, error) {
	var section domain.Section
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&section).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepositoryImpl) ExistsByTitleOrSlug(ctx context.Context, title, slug string, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&domain.Section{}).Where("title = ? OR slug = ?", title, slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes the editable columns. threads_count is owned by the thread repository.
func (r *sectionRepositoryImpl) Update(ctx context.Context, section *domain.Section) error {
	return r.db.WithContext(ctx).
		Model(section).
		Select("title", "slug", "position", "description", "updated_at").
		Updates(section).Error
}

func (r *sectionRepositoryImpl) List(ctx context.Context, q pagination.Query) ([]domain.Section, int64, error) {
	var sections []domain.Section
	total, err := pagination.Find(r.db.WithContext(ctx).Model(&domain.Section{}), pagination.Sections, q, &sections)
	if err != nil {
		return nil, 0, err
	}
	return sections, total, nil
}

func (r *sectionRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Section{}).Count(&count).Error
	return count, err
}
