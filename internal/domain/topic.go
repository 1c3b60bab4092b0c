package domain

import "github.com/google/uuid"

// Topic is a discussion post inside a thread. It owns its comments.
type Topic struct {
	BaseModel
	ThreadID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_topics_thread_slug,priority:1" json:"threadId"`
	AuthorID      uuid.UUID `gorm:"type:uuid;not null;index:idx_topics_author_id" json:"authorId"`
	Title         string    `gorm:"type:varchar(100);not null" json:"title"`
	Slug          string    `gorm:"type:varchar(130);not null;uniqueIndex:idx_topics_thread_slug,priority:2" json:"slug"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	Views         int64     `gorm:"not null;default:0" json:"views"`
	CommentsCount int64     `gorm:"not null;default:0" json:"commentsCount"`
	Pinned        bool      `gorm:"not null;default:false;index" json:"pinned"`
	Closed        bool      `gorm:"not null;default:false" json:"closed"`
	Thread        *Thread   `gorm:"foreignKey:ThreadID" json:"thread,omitempty"`
	Author        *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// TableName specifies the table name for Topic
func (Topic) TableName() string {
	return "topics"
}
