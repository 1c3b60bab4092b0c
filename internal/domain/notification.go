package domain

import "github.com/google/uuid"

// NotificationType classifies a notification
type NotificationType string

const (
	NotificationTypeComment NotificationType = "comment"
	NotificationTypeBan     NotificationType = "ban"
	NotificationTypeUnban   NotificationType = "unban"
	NotificationTypeRestore NotificationType = "restore"
)

// Notification is a message addressed to a single user
type Notification struct {
	BaseModel
	UserID  uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_user_read,priority:1" json:"userId"`
	Type    NotificationType `gorm:"type:varchar(25);not null" json:"type"`
	Message string           `gorm:"type:varchar(75);not null" json:"message"`
	IsRead  bool             `gorm:"not null;default:false;index:idx_notifications_user_read,priority:2" json:"isRead"`
}

// TableName specifies the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}
