package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserStatus is the lifecycle state of an account
type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBanned  UserStatus = "banned"
	UserStatusDeleted UserStatus = "deleted"
)

// UserRole grants access to the admin surface
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// Lifecycle transition errors
var (
	ErrUserAlreadyBanned  = errors.New("user is already banned")
	ErrUserNotBanned      = errors.New("user is not banned")
	ErrUserAlreadyDeleted = errors.New("user is already deactivated")
	ErrUserNotDeleted     = errors.New("user is not deleted")
)

// Profile holds the personally identifying fields of a user.
// A deactivated user carries placeholder values here and the original
// values in the anonymized backup.
type Profile struct {
	Username  string     `gorm:"type:varchar(80);not null;uniqueIndex" json:"username"`
	Email     *string    `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	FullName  *string    `gorm:"type:varchar(75)" json:"fullName"`
	Avatar    string     `gorm:"type:text" json:"avatar"`
	Bio       string     `gorm:"type:varchar(500)" json:"bio"`
	Location  string     `gorm:"type:varchar(100)" json:"location"`
	LastLogin *time.Time `json:"lastLogin"`
	Birthday  *time.Time `json:"birthday"`
}

// ProfileColumns are the database columns backing Profile
var ProfileColumns = []string{
	"username", "email", "full_name", "avatar", "bio", "location", "last_login", "birthday",
}

// User is a forum account
type User struct {
	BaseModel
	Profile
	PasswordHash         string                       `gorm:"type:varchar(255);not null" json:"-"`
	AvatarKey            string                       `gorm:"type:varchar(512)" json:"-"`
	Role                 UserRole                     `gorm:"type:varchar(10);not null" json:"role"`
	Status               UserStatus                   `gorm:"type:varchar(10);not null;index" json:"status"`
	BannedAt             *time.Time                   `json:"bannedAt"`
	DeletedAt            *time.Time                   `json:"deletedAt"`
	AnonymizedBackup     datatypes.JSONType[*Profile] `json:"-"`
	PasswordResetToken   *string                      `gorm:"type:varchar(64);index" json:"-"`
	PasswordResetExpires *time.Time                   `json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// NewUser builds an active account with the given credentials
func NewUser(username, email, passwordHash string) *User {
	return &User{
		Profile: Profile{
			Username: username,
			Email:    &email,
		},
		PasswordHash: passwordHash,
		Role:         UserRoleUser,
		Status:       UserStatusActive,
	}
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// IsActive reports whether the account may authenticate
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Backup returns the profile captured at deactivation, or nil
func (u *User) Backup() *Profile {
	return u.AnonymizedBackup.Data()
}

// AnonymizedUsername is the placeholder username of a deactivated account
func AnonymizedUsername(id uuid.UUID) string {
	return fmt.Sprintf("deleted%s", id.String())
}

// Ban moves an active account to banned
func (u *User) Ban(now time.Time) error {
	switch u.Status {
	case UserStatusBanned:
		return ErrUserAlreadyBanned
	case UserStatusDeleted:
		return ErrUserAlreadyDeleted
	}
	u.Status = UserStatusBanned
	u.BannedAt = &now
	return nil
}

// Unban returns a banned account to active
func (u *User) Unban() error {
	if u.Status != UserStatusBanned {
		return ErrUserNotBanned
	}
	u.Status = UserStatusActive
	u.BannedAt = nil
	return nil
}

// Anonymize soft-deletes the account: the profile is moved into the backup
// and replaced with placeholders.
func (u *User) Anonymize(now time.Time) error {
	if u.Status == UserStatusDeleted {
		return ErrUserAlreadyDeleted
	}
	original := u.Profile
	u.AnonymizedBackup = datatypes.NewJSONType(&original)
	u.Profile = Profile{Username: AnonymizedUsername(u.ID)}
	u.Status = UserStatusDeleted
	u.DeletedAt = &now
	u.BannedAt = nil
	return nil
}

// Restore reactivates a soft-deleted account and puts the backed up profile back
func (u *User) Restore() error {
	if u.Status != UserStatusDeleted {
		return ErrUserNotDeleted
	}
	if backup := u.Backup(); backup != nil {
		u.Profile = *backup
	}
	u.AnonymizedBackup = datatypes.NewJSONType[*Profile](nil)
	u.Status = UserStatusActive
	u.DeletedAt = nil
	return nil
}
