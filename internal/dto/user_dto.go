package dto

import (
	"time"

	"github.com/google/uuid"

	"forum-api/internal/domain"
)

// UserResponse represents a user without credentials
// @Description Deactivated users carry placeholder profile values
type UserResponse struct {
	ID        uuid.UUID         `json:"id" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Username  string            `json:"username" example:"palmlover"`
	Email     *string           `json:"email" example:"jane@example.com"`
	FullName  *string           `json:"fullName" example:"Jane Palm"`
	Avatar    string            `json:"avatar"`
	Bio       string            `json:"bio"`
	Location  string            `json:"location"`
	Birthday  *time.Time        `json:"birthday"`
	LastLogin *time.Time        `json:"lastLogin"`
	Role      domain.UserRole   `json:"role" example:"user"`
	Status    domain.UserStatus `json:"status" example:"active"`
	BannedAt  *time.Time        `json:"bannedAt"`
	DeletedAt *time.Time        `json:"deletedAt"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// NewUserResponse converts a domain user
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		Location:  u.Location,
		Birthday:  u.Birthday,
		LastLogin: u.LastLogin,
		Role:      u.Role,
		Status:    u.Status,
		BannedAt:  u.BannedAt,
		DeletedAt: u.DeletedAt,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UpdateProfileRequest represents a partial profile update. At least one field is required.
type UpdateProfileRequest struct {
	Username *string    `json:"username" binding:"omitempty,min=2,max=55" example:"palmlover"`
	Email    *string    `json:"email" binding:"omitempty,email,max=255" example:"jane@example.com"`
	FullName *string    `json:"fullName" binding:"omitempty,max=75" example:"Jane Palm"`
	Bio      *string    `json:"bio" binding:"omitempty,max=500" example:"Growing palms since 2010"`
	Location *string    `json:"location" binding:"omitempty,max=100" example:"Lisbon"`
	Birthday *time.Time `json:"birthday" example:"1990-05-01T00:00:00Z"`
}

// IsEmpty reports whether no field was provided
func (r *UpdateProfileRequest) IsEmpty() bool {
	return r.Username == nil && r.Email == nil && r.FullName == nil &&
		r.Bio == nil && r.Location == nil && r.Birthday == nil
}

// ChangePasswordRequest represents a password change by the account owner
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword" binding:"required"`
	NewPassword        string `json:"newPassword" binding:"required,min=8,max=72"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required,eqfield=NewPassword"`
}

// ForgotPasswordRequest starts a password reset
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email" example:"jane@example.com"`
}

// ForgotPasswordResponse carries the raw reset token outside production
type ForgotPasswordResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"resetToken,omitempty"`
}

// ResetPasswordRequest completes a password reset
type ResetPasswordRequest struct {
	NewPassword        string `json:"newPassword" binding:"required,min=8,max=72"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required,eqfield=NewPassword"`
}

// AvatarResponse is returned after an avatar upload
type AvatarResponse struct {
	AvatarURL string       `json:"avatarUrl"`
	User      UserResponse `json:"user"`
}

// UserStatsResponse counts the content authored by a user
type UserStatsResponse struct {
	UserID        uuid.UUID `json:"userId"`
	TopicsCount   int64     `json:"topicsCount"`
	CommentsCount int64     `json:"commentsCount"`
}
