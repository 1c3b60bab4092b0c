package dto

import (
	"time"

	"github.com/google/uuid"

	"forum-api/internal/domain"
)

// CreateThreadRequest represents the request to create a thread
type CreateThreadRequest struct {
	SectionID   uuid.UUID `json:"sectionId" binding:"required" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	Title       string    `json:"title" binding:"required,min=3,max=75" example:"A thread"`
	Description string    `json:"description" binding:"max=300"`
	Order       *int      `json:"order" binding:"omitempty,min=0"`
}

// UpdateThreadRequest represents a partial thread update. sectionId moves the thread.
type UpdateThreadRequest struct {
	SectionID   *uuid.UUID `json:"sectionId"`
	Title       *string    `json:"title" binding:"omitempty,min=3,max=75"`
	Description *string    `json:"description" binding:"omitempty,max=300"`
	Order       *int       `json:"order" binding:"omitempty,min=0"`
}

// ThreadResponse represents a thread
type ThreadResponse struct {
	ID          uuid.UUID       `json:"id"`
	SectionID   uuid.UUID       `json:"sectionId"`
	Section     *SectionSummary `json:"section,omitempty"`
	Title       string          `json:"title" example:"A thread"`
	Slug        string          `json:"slug" example:"a-thread"`
	Order       int             `json:"order"`
	Description string          `json:"description"`
	TopicsCount int64           `json:"topicsCount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewThreadResponse converts a domain thread
func NewThreadResponse(t *domain.Thread) ThreadResponse {
	resp := ThreadResponse{
		ID:          t.ID,
		SectionID:   t.SectionID,
		Title:       t.Title,
		Slug:        t.Slug,
		Order:       t.Order,
		Description: t.Description,
		TopicsCount: t.TopicsCount,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Section != nil {
		resp.Section = &SectionSummary{ID: t.Section.ID, Title: t.Section.Title, Slug: t.Section.Slug}
	}
	return resp
}

// ThreadSummary is the thread embedded in topic responses
type ThreadSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

// DeleteThreadResponse reports a thread cascade
type DeleteThreadResponse struct {
	Thread          ThreadResponse `json:"thread"`
	DeletedTopics   int64          `json:"deletedTopics"`
	DeletedComments int64          `json:"deletedComments"`
}
