package domain

import "github.com/google/uuid"

// Thread is a sub-category of a section. It owns its topics.
type Thread struct {
	BaseModel
	SectionID   uuid.UUID `gorm:"type:uuid;not null;index:idx_threads_section_id" json:"sectionId"`
	Title       string    `gorm:"type:varchar(75);not null;uniqueIndex" json:"title"`
	Slug        string    `gorm:"type:varchar(100);not null;index" json:"slug"`
	Order       int       `gorm:"column:position;not null;default:0" json:"order"`
	Description string    `gorm:"type:varchar(300)" json:"description"`
	TopicsCount int64     `gorm:"not null;default:0" json:"topicsCount"`
	Section     *Section  `gorm:"foreignKey:SectionID" json:"section,omitempty"`
}

// TableName specifies the table name for Thread
func (Thread) TableName() string {
	return "threads"
}
