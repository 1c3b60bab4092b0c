package dto

import (
	"time"

	"github.com/google/uuid"

	"forum-api/internal/domain"
)

// CreateSectionRequest represents the request to create a section
type CreateSectionRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=55" example:"Palms"`
	Description string `json:"description" binding:"max=300" example:"Everything about palm trees"`
	Order       *int   `json:"order" binding:"omitempty,min=0" example:"0"`
}

// UpdateSectionRequest represents a partial section update
type UpdateSectionRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=2,max=55" example:"Palms"`
	Description *string `json:"description" binding:"omitempty,max=300"`
	Order       *int    `json:"order" binding:"omitempty,min=0"`
}

// SectionResponse represents a section
type SectionResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title" example:"Palms"`
	Slug         string    `json:"slug" example:"palms"`
	Order        int       `json:"order"`
	Description  string    `json:"description"`
	ThreadsCount int64     `json:"threadsCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NewSectionResponse converts a domain section
func NewSectionResponse(s *domain.Section) SectionResponse {
	return SectionResponse{
		ID:           s.ID,
		Title:        s.Title,
		Slug:         s.Slug,
		Order:        s.Order,
		Description:  s.Description,
		ThreadsCount: s.ThreadsCount,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

// SectionSummary is the section embedded in thread responses
type SectionSummary struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
	Slug  string    `json:"slug"`
}

// DeleteSectionResponse reports a section cascade
type DeleteSectionResponse struct {
	Section         SectionResponse `json:"section"`
	DeletedThreads  int64           `json:"deletedThreads"`
	DeletedTopics   int64           `json:"deletedTopics"`
	DeletedComments int64           `json:"deletedComments"`
}
