package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"forum-api/internal/auth"
	"forum-api/internal/client"
	"forum-api/internal/domain"
	"forum-api/internal/dto"
	"forum-api/internal/metrics"
	"forum-api/internal/repository"
	"forum-api/internal/response"
)

const (
	// ResetTokenTTL is how long a password reset link stays valid
	ResetTokenTTL = 15 * time.Minute

	forgotPasswordMessage = "If user exists, reset link sent"
	resetPasswordSubject  = "Reset your password | Forum"
)

// UserServiceConfig holds the settings of the self-service account endpoints
type UserServiceConfig struct {
	ClientURL        string
	ExposeResetToken bool
	MaxAvatarBytes   int64
}

// UserService defines the interface for self-service account management
type UserService interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, file io.Reader, size int64, contentType string) (*dto.AvatarResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, token string, req *dto.ResetPasswordRequest) error
}

// userServiceImpl is the implementation of UserService
type userServiceImpl struct {
	userRepo      repository.UserRepository
	notifications NotificationService
	s3Client      client.S3ClientInterface
	mailer        client.Mailer
	cfg           UserServiceConfig
	metrics       *metrics.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

// NewUserService creates a new instance of UserService
func NewUserService(
	userRepo repository.UserRepository,
	notifications NotificationService,
	s3Client client.S3ClientInterface,
	mailer client.Mailer,
	cfg UserServiceConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:      userRepo,
		notifications: notifications,
		s3Client:      s3Client,
		mailer:        mailer,
		cfg:           cfg,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// UpdateProfile applies the provided fields, keeping username and email unique
func (s *userServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if req.IsEmpty() {
		return nil, response.NewValidationError("You haven't made any changes", "")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "User not found", "Failed to load user")
	}

	var columns []string

	if username := trimPtr(req.Username); changed(username, user.Username) {
		if err := checkUsername(*username); err != nil {
			return nil, err
		}
		taken, err := s.userRepo.ExistsByUsername(ctx, *username, user.ID)
		if err != nil {
			return nil, response.NewInternalError("Failed to check username", err)
		}
		if taken {
			return nil, response.NewConflictError("Username already taken", "")
		}
		user.Username = *username
		columns = append(columns, "username")
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" {
			return nil, response.NewValidationError("Email cannot be empty", "email is required")
		}
		if user.Email == nil || *user.Email != email {
			taken, err := s.userRepo.ExistsByEmail(ctx, email, user.ID)
			if err != nil {
				return nil, response.NewInternalError("Failed to check email", err)
			}
			if taken {
				return nil, response.NewConflictError("Email already in use", "")
			}
			user.Email = &email
			columns = append(columns, "email")
		}
	}

	if fullName := trimPtr(req.FullName); fullName != nil {
		current := ""
		if user.FullName != nil {
			current = *user.FullName
		}
		if *fullName != current {
			if *fullName == "" {
				user.FullName = nil
			} else {
				user.FullName = fullName
			}
			columns = append(columns, "full_name")
		}
	}

	if bio := trimPtr(req.Bio); changed(bio, user.Bio) {
		user.Bio = *bio
		columns = append(columns, "bio")
	}

	if location := trimPtr(req.Location); changed(location, user.Location) {
		user.Location = *location
		columns = append(columns, "location")
	}

	if req.Birthday != nil && (user.Birthday == nil || !user.Birthday.Equal(*req.Birthday)) {
		birthday := req.Birthday.UTC()
		user.Birthday = &birthday
		columns = append(columns, "birthday")
	}

	if len(columns) == 0 {
		return nil, response.NewValidationError("You haven't made any changes", "")
	}

	if err := s.userRepo.Update(ctx, user, columns...); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflictError("Username or email already in use", "")
		}
		return nil, response.NewInternalError("Failed to update profile", err)
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// UploadAvatar stores a new avatar image and drops the previous object
func (s *userServiceImpl) UploadAvatar(ctx context.Context, userID uuid.UUID, file io.Reader, size int64, contentType string) (*dto.AvatarResponse, error) {
	if s.s3Client == nil {
		return nil, response.NewInternalError("Avatar storage is not configured", nil)
	}
	ext, ok := client.AvatarExtension(contentType)
	if !ok {
		return nil, response.NewValidationError("Unsupported image type", "avatar must be a jpeg, png, gif or webp image")
	}
	if s.cfg.MaxAvatarBytes > 0 && size > s.cfg.MaxAvatarBytes {
		return nil, response.NewValidationError("Avatar is too large", fmt.Sprintf("avatar must be at most %d bytes", s.cfg.MaxAvatarBytes))
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "User not found", "Failed to load user")
	}

	key := s.s3Client.GenerateAvatarKey(user.ID, ext)
	url, err := s.s3Client.UploadFile(ctx, key, file, contentType)
	if err != nil {
		return nil, response.NewInternalError("Failed to upload avatar", err)
	}

	previousKey := user.AvatarKey
	user.Avatar = url
	user.AvatarKey = key
	if err := s.userRepo.Update(ctx, user, "avatar", "avatar_key"); err != nil {
		s.deleteObject(ctx, key)
		return nil, response.NewInternalError("Failed to update avatar", err)
	}

	if previousKey != "" && previousKey != key {
		s.deleteObject(ctx, previousKey)
	}

	return &dto.AvatarResponse{
		AvatarURL: url,
		User:      dto.NewUserResponse(user),
	}, nil
}

// ChangePassword replaces the password after checking the current one
func (s *userServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, req *dto.ChangePasswordRequest) error {
	if req.NewPassword != req.ConfirmNewPassword {
		return response.NewValidationError("Passwords do not match", "")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return lookupError(err, "User not found", "Failed to load user")
	}

	if err := auth.ComparePassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return response.NewValidationError("Incorrect current password", "")
	}
	if req.NewPassword == req.CurrentPassword {
		return response.NewValidationError("New password must be different from current password", "")
	}

	return s.setPassword(ctx, user, req.NewPassword)
}

// DeleteAccount permanently removes the caller's account.
// Authored topics and comments stay and lose their author.
func (s *userServiceImpl) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return lookupError(err, "User not found", "Failed to load user")
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return lookupError(err, "User not found", "Failed to delete user")
	}

	if err := s.notifications.Forget(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to delete notifications of removed user", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	if user.AvatarKey != "" {
		s.deleteObject(ctx, user.AvatarKey)
	}

	s.metrics.RecordUserTransition("self_delete")
	s.logger.Info("User deleted own account", zap.String("user_id", user.ID.String()))
	return nil
}

// ForgotPassword issues a reset token and mails the link. The reply is the
// same whether or not the email belongs to an account.
func (s *userServiceImpl) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) (*dto.ForgotPasswordResponse, error) {
	resp := &dto.ForgotPasswordResponse{Message: forgotPasswordMessage}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return resp, nil
		}
		return nil, response.NewInternalError("Failed to load user", err)
	}
	if !user.IsActive() {
		return resp, nil
	}

	token, hash, err := newResetToken()
	if err != nil {
		return nil, response.NewInternalError("Failed to generate reset token", err)
	}

	expires := s.now().UTC().Add(ResetTokenTTL)
	user.PasswordResetToken = &hash
	user.PasswordResetExpires = &expires
	if err := s.userRepo.Update(ctx, user, "password_reset_token", "password_reset_expires"); err != nil {
		return nil, response.NewInternalError("Failed to store reset token", err)
	}

	resetURL := strings.TrimRight(s.cfg.ClientURL, "/") + "/reset-password/" + token
	html, err := client.ResetPasswordEmail(user.Username, resetURL, ResetTokenTTL)
	if err != nil {
		return nil, response.NewInternalError("Failed to render reset email", err)
	}

	go s.sendMail(*user.Email, resetPasswordSubject, html)

	if s.cfg.ExposeResetToken {
		resp.ResetToken = token
	}
	return resp, nil
}

// ResetPassword sets a new password for the holder of an unexpired reset token
func (s *userServiceImpl) ResetPassword(ctx context.Context, token string, req *dto.ResetPasswordRequest) error {
	if token == "" {
		return response.NewValidationError("Token is required", "")
	}
	if req.NewPassword != req.ConfirmNewPassword {
		return response.NewValidationError("Passwords do not match", "")
	}

	user, err := s.userRepo.FindByResetToken(ctx, hashResetToken(token), s.now().UTC())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewUnauthorizedError("Invalid or expired reset token", "")
		}
		return response.NewInternalError("Failed to load user", err)
	}

	user.PasswordResetToken = nil
	user.PasswordResetExpires = nil
	return s.setPassword(ctx, user, req.NewPassword, "password_reset_token", "password_reset_expires")
}

func (s *userServiceImpl) setPassword(ctx context.Context, user *domain.User, password string, extra ...string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return response.NewInternalError("Failed to hash password", err)
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(ctx, user, append([]string{"password_hash"}, extra...)...); err != nil {
		return response.NewInternalError("Failed to update password", err)
	}
	return nil
}

// sendMail runs detached from the request; failures are only logged
func (s *userServiceImpl) sendMail(to, subject, html string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.mailer.Send(ctx, to, subject, html); err != nil {
		s.logger.Error("Failed to send email", zap.String("subject", subject), zap.Error(err))
	}
}

func (s *userServiceImpl) deleteObject(ctx context.Context, key string) {
	if s.s3Client == nil || key == "" {
		return
	}
	if err := s.s3Client.DeleteFile(ctx, key); err != nil {
		s.logger.Warn("Failed to delete avatar object", zap.String("key", key), zap.Error(err))
	}
}

// newResetToken returns a random hex token and the sha256 hex digest that is stored
func newResetToken() (token, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, hashResetToken(token), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
