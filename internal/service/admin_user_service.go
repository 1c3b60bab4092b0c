package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"forum-api/internal/client"
	"forum-api/internal/domain"
	"forum-api/internal/dto"
	"forum-api/internal/metrics"
	"forum-api/internal/pagination"
	"forum-api/internal/repository"
	"forum-api/internal/response"
)

// AdminUserService defines the moderation operations on user accounts
type AdminUserService interface {
	ListUsers(ctx context.Context, raw pagination.RawQuery) (*pagination.Page[dto.UserResponse], error)
	ListBannedUsers(ctx context.Context, raw pagination.RawQuery) (*pagination.Page[dto.UserResponse], error)
	ListDeletedUsers(ctx context.Context, raw pagination.RawQuery) (*pagination.Page[dto.UserResponse], error)
	Ban(ctx context.Context, actorID, userID uuid.UUID) (*dto.UserResponse, error)
	Unban(ctx context.Context, actorID, userID uuid.UUID) (*dto.UserResponse, error)
	Deactivate(ctx context.Context, actorID, userID uuid.UUID) (*dto.UserResponse, error)
	Restore(ctx context.Context, actorID, userID uuid.UUID) (*dto.UserResponse, error)
	PermanentDelete(ctx context.Context, actorID, userID uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) (*dto.UserStatsResponse, error)
}

var (
	banColumns       = []string{"status", "banned_at"}
	lifecycleColumns = append([]string{"status", "banned_at", "deleted_at", "anonymized_backup"}, domain.ProfileColumns...)
)

// adminUserServiceImpl is the implementation of AdminUserService
type adminUserServiceImpl struct {
	userRepo      repository.UserRepository
	notifications NotificationService
	s3Client      client.S3ClientInterface
	metrics       *metrics.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

// NewAdminUserService creates a new instance of AdminUserService
func NewAdminUserService(
	userRepo repository.UserRepository,
	notifications NotificationService,
	s3Client client.S3ClientInterface,
	m *metrics.Metrics,
	logger *zap.Logger,
) AdminUserService {
	return &adminUserServiceImpl{
		userRepo:      userRepo,
		notifications: notifications,
		s3Client:      s3Client,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *adminUserServiceImpl) ListUsers(ctx context.Context, raw pagination.RawQuery) (*pagination.Page[dto.UserResponse], error) {
	return s.list(ctx, "", pagination.Users, raw)
}

// ListBannedUsers sorts by bannedAt unless the request says otherwise
func (s *adminUserServiceImpl) ListBannedUsers(ctx context.Context, raw pagination.RawQuery) (*pagination.Page[dto.UserResponse], error) {
	return s.list(ctx, domain.UserStatusBanned, pagination.Users.WithDefaultSort("bannedAt"), raw)
}

// ListDeletedUsers sorts by deletedAt unless the request says otherwise
func (s *adminUserServiceImpl) ListDeletedUsers(ctx context.Context, raw pagination.RawQuery) (*pagination.Page[dto.UserResponse], error) {
	return s.list(ctx, domain.UserStatusDeleted, pagination.Users.WithDefaultSort("deletedAt"), raw)
}

func (s *adminUserServiceImpl) list(ctx context.Context, status domain.UserStatus, res pagination.Resource, raw pagination.RawQuery) (*pagination.Page[dto.UserResponse], error) {
	q, err := pagination.Parse(raw, res)
	if err != nil {
		return nil, err
	}

	users, total, err := s.userRepo.List(ctx, status, res, q)
	if err != nil {
		return nil, response.NewInternalError("Failed to list users", err)
	}

	items := make([]dto.UserResponse, len(users))
	for i := range users {
		items[i] = dto.NewUserResponse(&users[i])
	}
	page := pagination.NewPage(items, total, q)
	return &page, nil
}

// Ban blocks an active account and notifies its owner
func (s *adminUserServiceImpl) Ban(ctx context.Context, actorID, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.target(ctx, actorID, userID)
	if err != nil {
		return nil, err
	}
	from := user.Status
	if err := user.Ban(s.now().UTC()); err != nil {
		return nil, transitionError(err)
	}
	if err := s.save(ctx, user, from, "ban", banColumns...); err != nil {
		return nil, err
	}
	s.notify(ctx, user.ID, domain.NotificationTypeBan, "Your account has been banned")
	return userResponse(user), nil
}

// Unban reactivates a banned account and notifies its owner
func (s *adminUserServiceImpl) Unban(ctx context.Context, actorID, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.target(ctx, actorID, userID)
	if err != nil {
		return nil, err
	}
	if err := user.Unban(); err != nil {
		return nil, transitionError(err)
	}
	if err := s.save(ctx, user, domain.UserStatusBanned, "unban", banColumns...); err != nil {
		return nil, err
	}
	s.notify(ctx, user.ID, domain.NotificationTypeUnban, "Your account has been unbanned")
	return userResponse(user), nil
}

// Deactivate soft-deletes the account, keeping its profile in the backup
func (s *adminUserServiceImpl) Deactivate(ctx context.Context, actorID, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.target(ctx, actorID, userID)
	if err != nil {
		return nil, err
	}
	from := user.Status
	if err := user.Anonymize(s.now().UTC()); err != nil {
		return nil, transitionError(err)
	}
	if err := s.save(ctx, user, from, "deactivate", lifecycleColumns...); err != nil {
		return nil, err
	}
	return userResponse(user), nil
}

// Restore reactivates a soft-deleted account with its original profile.
// It fails when the original username or email was claimed in the meantime.
func (s *adminUserServiceImpl) Restore(ctx context.Context, actorID, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.target(ctx, actorID, userID)
	if err != nil {
		return nil, err
	}
	if user.Status != domain.UserStatusDeleted {
		return nil, transitionError(domain.ErrUserNotDeleted)
	}

	if backup := user.Backup(); backup != nil {
		taken, err := s.userRepo.ExistsByUsername(ctx, backup.Username, user.ID)
		if err != nil {
			return nil, response.NewInternalError("Failed to check username", err)
		}
		if taken {
			return nil, response.NewConflictError("Original username is now in use", backup.Username)
		}
		if backup.Email != nil {
			taken, err := s.userRepo.ExistsByEmail(ctx, *backup.Email, user.ID)
			if err != nil {
				return nil, response.NewInternalError("Failed to check email", err)
			}
			if taken {
				return nil, response.NewConflictError("Original email is now in use", *backup.Email)
			}
		}
	}

	if err := user.Restore(); err != nil {
		return nil, transitionError(err)
	}
	if err := s.save(ctx, user, domain.UserStatusDeleted, "restore", lifecycleColumns...); err != nil {
		return nil, err
	}
	s.notify(ctx, user.ID, domain.NotificationTypeRestore, "Your account has been restored")
	return userResponse(user), nil
}

// PermanentDelete removes the account row. Authored content stays without an author.
func (s *adminUserServiceImpl) PermanentDelete(ctx context.Context, actorID, userID uuid.UUID) error {
	user, err := s.target(ctx, actorID, userID)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return lookupError(err, "User not found", "Failed to delete user")
	}

	if err := s.notifications.Forget(ctx, user.ID); err != nil {
		s.logger.Warn("Failed to delete notifications of removed user", zap.String("user_id", user.ID.String()), zap.Error(err))
	}

	if user.AvatarKey != "" && s.s3Client != nil {
		if err := s.s3Client.DeleteFile(ctx, user.AvatarKey); err != nil {
			s.logger.Warn("Failed to delete avatar object", zap.String("key", user.AvatarKey), zap.Error(err))
		}
	}

	s.metrics.RecordUserTransition("permanent_delete")
	s.logger.Info("User permanently deleted",
		zap.String("user_id", user.ID.String()),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

// Stats counts the topics and comments a user authored
func (s *adminUserServiceImpl) Stats(ctx context.Context, userID uuid.UUID) (*dto.UserStatsResponse, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, lookupError(err, "User not found", "Failed to load user")
	}

	stats, err := s.userRepo.Stats(ctx, userID)
	if err != nil {
		return nil, response.NewInternalError("Failed to load user stats", err)
	}
	return &dto.UserStatsResponse{
		UserID:        userID,
		TopicsCount:   stats.TopicsCount,
		CommentsCount: stats.CommentsCount,
	}, nil
}

// target loads the user an admin acts on; admins cannot act on themselves
func (s *adminUserServiceImpl) target(ctx context.Context, actorID, userID uuid.UUID) (*domain.User, error) {
	if actorID == userID {
		return nil, response.NewForbiddenError("You cannot perform this action on your own account", "")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "User not found", "Failed to load user")
	}
	return user, nil
}

// save writes the transition only if no other request changed the status since it was read
func (s *adminUserServiceImpl) save(ctx context.Context, user *domain.User, from domain.UserStatus, transition string, columns ...string) error {
	if err := s.userRepo.Transition(ctx, user, from, columns...); err != nil {
		switch {
		case errors.Is(err, repository.ErrStatusChanged):
			return response.NewInvalidStateError("User status changed, reload and try again", "")
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return response.NewConflictError("Username or email already in use", "")
		}
		return response.NewInternalError("Failed to update user", err)
	}
	s.metrics.RecordUserTransition(transition)
	s.logger.Info("User status changed",
		zap.String("user_id", user.ID.String()),
		zap.String("transition", transition),
		zap.String("status", string(user.Status)),
	)
	return nil
}

// notify is best effort: the transition already happened
func (s *adminUserServiceImpl) notify(ctx context.Context, userID uuid.UUID, kind domain.NotificationType, message string) {
	if err := s.notifications.Notify(ctx, userID, kind, message); err != nil {
		s.logger.Warn("Failed to notify user", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// transitionError maps a refused lifecycle transition to InvalidState
func transitionError(err error) error {
	switch {
	case errors.Is(err, domain.ErrUserAlreadyBanned):
		return response.NewInvalidStateError("User is already banned", "")
	case errors.Is(err, domain.ErrUserNotBanned):
		return response.NewInvalidStateError("User is not banned", "")
	case errors.Is(err, domain.ErrUserAlreadyDeleted):
		return response.NewInvalidStateError("User is already deactivated", "")
	case errors.Is(err, domain.ErrUserNotDeleted):
		return response.NewInvalidStateError("User is not deleted", "")
	}
	return response.NewInternalError("Unexpected user transition failure", err)
}

func userResponse(user *domain.User) *dto.UserResponse {
	resp := dto.NewUserResponse(user)
	return &resp
}
