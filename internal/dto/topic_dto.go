package dto

import (
	"time"

	"github.com/google/uuid"

	"forum-api/internal/domain"
	"forum-api/internal/markdown"
)

// CreateTopicRequest represents the request to create a topic in a thread
type CreateTopicRequest struct {
	Title   string `json:"title" binding:"required,min=3,max=100" example:"My new palm"`
	Content string `json:"content" binding:"required" example:"It arrived **today**."`
}

// UpdateTopicRequest represents a partial topic update by its author
type UpdateTopicRequest struct {
	Title   *string `json:"title" binding:"omitempty,min=3,max=100"`
	Content *string `json:"content" binding:"omitempty,min=1"`
}

// TopicResponse represents a topic. author is null once the author account is removed.
// @Description contentHtml is the markdown content rendered with raw HTML stripped
type TopicResponse struct {
	ID            uuid.UUID      `json:"id"`
	ThreadID      uuid.UUID      `json:"threadId"`
	Thread        *ThreadSummary `json:"thread,omitempty"`
	Author        *AuthorSummary `json:"author"`
	Title         string         `json:"title" example:"My new palm"`
	Slug          string         `json:"slug" example:"my-new-palm"`
	Content       string         `json:"content"`
	ContentHTML   string         `json:"contentHtml"`
	Views         int64          `json:"views"`
	CommentsCount int64          `json:"commentsCount"`
	Pinned        bool           `json:"pinned"`
	Closed        bool           `json:"closed"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// NewTopicResponse converts a domain topic
func NewTopicResponse(t *domain.Topic) TopicResponse {
	resp := TopicResponse{
		ID:            t.ID,
		ThreadID:      t.ThreadID,
		Author:        NewAuthorSummary(t.Author),
		Title:         t.Title,
		Slug:          t.Slug,
		Content:       t.Content,
		ContentHTML:   markdown.Render(t.Content),
		Views:         t.Views,
		CommentsCount: t.CommentsCount,
		Pinned:        t.Pinned,
		Closed:        t.Closed,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
	if t.Thread != nil {
		resp.Thread = &ThreadSummary{ID: t.Thread.ID, Title: t.Thread.Title, Slug: t.Thread.Slug}
	}
	return resp
}

// DeleteTopicResponse reports a topic cascade
type DeleteTopicResponse struct {
	Topic           TopicResponse `json:"topic"`
	DeletedComments int64         `json:"deletedComments"`
}
