package domain

// Section is a top-level forum category. It owns its threads.
type Section struct {
	BaseModel
	Title        string `gorm:"type:varchar(55);not null;uniqueIndex" json:"title"`
	Slug         string `gorm:"type:varchar(80);not null;uniqueIndex" json:"slug"`
	Order        int    `gorm:"column:position;not null;default:0" json:"order"`
	Description  string `gorm:"type:varchar(300)" json:"description"`
	ThreadsCount int64  `gorm:"not null;default:0" json:"threadsCount"`
}

// TableName specifies the table name for Section
func (Section) TableName() string {
	return "sections"
}
