package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"forum-api/internal/domain"
	"forum-api/internal/pagination"
)

// ErrStatusChanged is returned by Transition when the stored status no longer
// matches the one the caller read
var ErrStatusChanged = errors.New("user status changed concurrently")

// UserStats counts content authored by a user
type UserStats struct {
	TopicsCount   int64
	CommentsCount int64
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, user *domain.User, columns ...string) error
	Transition(ctx context.Context, user *domain.User, from domain.UserStatus, columns ...string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status domain.UserStatus, res pagination.Resource, q pagination.Query) ([]domain.User, int64, error)
	Stats(ctx context.Context, id uuid.UUID) (*UserStats, error)
	CountByStatus(ctx context.Context) (map[domain.UserStatus]int64, error)
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// userRepositoryImpl is the GORM implementation of UserRepository
type userRepositoryImpl struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepositoryImpl{db: db}
}

func (r *userRepositoryImpl) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail matches the lower-cased email
func (r *userRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByResetToken finds the user holding an unexpired reset token hash
func (r *userRepositoryImpl) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("password_reset_token = ? AND password_reset_expires > ?", tokenHash, now).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepositoryImpl) ExistsByUsername(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	return r.exists(ctx, "username = ?", username, excludeID)
}

func (r *userRepositoryImpl) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	return r.exists(ctx, "email = ?", email, excludeID)
}

func (r *userRepositoryImpl) exists(ctx context.Context, cond string, value interface{}, excludeID uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&domain.User{}).Where(cond, value)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update writes only the given columns of user, leaving concurrent changes
// to the other columns (status in particular) untouched
func (r *userRepositoryImpl) Update(ctx context.Context, user *domain.User, columns ...string) error {
	result := r.db.WithContext(ctx).Model(user).Select(withUpdatedAt(columns)).Updates(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Transition writes the given columns only while the stored status is still from
func (r *userRepositoryImpl) Transition(ctx context.Context, user *domain.User, from domain.UserStatus, columns ...string) error {
	result := r.db.WithContext(ctx).
		Model(user).
		Where("status = ?", from).
		Select(withUpdatedAt(columns)).
		Updates(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func withUpdatedAt(columns []string) []string {
	out := make([]string, 0, len(columns)+1)
	out = append(out, columns...)
	return append(out, "updated_at")
}

// Delete permanently removes the user row
func (r *userRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List pages over users, restricted to status when it is not empty
func (r *userRepositoryImpl) List(ctx context.Context, status domain.UserStatus, res pagination.Resource, q pagination.Query) ([]domain.User, int64, error) {
	base := r.db.WithContext(ctx).Model(&domain.User{})
	if status != "" {
		base = base.Where("status = ?", status)
	}

	var users []domain.User
	total, err := pagination.Find(base, res, q, &users)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Stats counts the topics and comments authored by the user
func (r *userRepositoryImpl) Stats(ctx context.Context, id uuid.UUID) (*UserStats, error) {
	var stats UserStats
	db := r.db.WithContext(ctx)
	if err := db.Model(&domain.Topic{}).Where("author_id = ?", id).Count(&stats.TopicsCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&domain.Comment{}).Where("author_id = ?", id).Count(&stats.CommentsCount).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// CountByStatus returns the number of users in each lifecycle state
func (r *userRepositoryImpl) CountByStatus(ctx context.Context) (map[domain.UserStatus]int64, error) {
	var rows []struct {
		Status domain.UserStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.UserStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ClearExpiredResetTokens drops reset tokens whose expiry has passed
func (r *userRepositoryImpl) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("password_reset_token IS NOT NULL AND password_reset_expires <= ?", now).
		UpdateColumns(map[string]interface{}{
			"password_reset_token":   nil,
			"password_reset_expires": nil,
		})
	return result.RowsAffected, result.Error
}
