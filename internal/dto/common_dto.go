package dto

import (
	"github.com/google/uuid"

	"forum-api/internal/domain"
)

// AuthorSummary identifies the author of a topic or comment
type AuthorSummary struct {
	ID       uuid.UUID `json:"id" example:"b2c3d4e5-f6a7-8901-bcde-f12345678901"`
	Username string    `json:"username" example:"palmlover"`
	Avatar   string    `json:"avatar" example:"https://cdn.example.com/avatars/a.png"`
}

// NewAuthorSummary returns nil when the author account no longer exists
func NewAuthorSummary(u *domain.User) *AuthorSummary {
	if u == nil {
		return nil
	}
	return &AuthorSummary{
		ID:       u.ID,
		Username: u.Username,
		Avatar:   u.Avatar,
	}
}
