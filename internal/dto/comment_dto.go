package dto

import (
	"time"

	"github.com/google/uuid"

	"forum-api/internal/domain"
	"forum-api/internal/markdown"
)

// CreateCommentRequest represents the request to comment on a topic
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required" example:"Lovely palm!"`
}

// UpdateCommentRequest represents the request to edit a comment
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CommentResponse represents a comment. author is null once the author account is removed.
type CommentResponse struct {
	ID          uuid.UUID      `json:"id"`
	TopicID     uuid.UUID      `json:"topicId"`
	Author      *AuthorSummary `json:"author"`
	Content     string         `json:"content"`
	ContentHTML string         `json:"contentHtml"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// NewCommentResponse converts a domain comment
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:          c.ID,
		TopicID:     c.TopicID,
		Author:      NewAuthorSummary(c.Author),
		Content:     c.Content,
		ContentHTML: markdown.Render(c.Content),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
