package domain

import "github.com/google/uuid"

// Comment represents a reply on a topic
type Comment struct {
	BaseModel
	TopicID  uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_topic_id" json:"topicId"`
	AuthorID uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_author_id" json:"authorId"`
	Content  string    `gorm:"type:text;not null" json:"content"`
	Topic    *Topic    `gorm:"foreignKey:TopicID" json:"topic,omitempty"`
	Author   *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}
