package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"forum-api/internal/auth"
	"forum-api/internal/domain"
	"forum-api/internal/dto"
	"forum-api/internal/metrics"
	"forum-api/internal/repository"
	"forum-api/internal/response"
)

// Account status messages shared by login and the request gate
const (
	msgAccountBanned  = "Your account is banned"
	msgAccountDeleted = "Your account is deleted"
)

// AuthService defines the interface for registration, login and session checks
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// authServiceImpl is the implementation of AuthService
type authServiceImpl struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthService creates a new instance of AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	tokens *auth.TokenManager,
	m *metrics.Metrics,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// checkAccountStatus rejects accounts that are not active
func checkAccountStatus(user *domain.User) error {
	switch user.Status {
	case domain.UserStatusBanned:
		return response.NewForbiddenError(msgAccountBanned, "")
	case domain.UserStatusDeleted:
		return response.NewForbiddenError(msgAccountDeleted, "")
	}
	return nil
}

// Register creates an active account and signs it in
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := checkUsername(username); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, username, uuid.Nil)
	if err != nil {
		return nil, response.NewInternalError("Failed to check username", err)
	}
	if taken {
		return nil, response.NewConflictError("Username already taken", "")
	}

	taken, err = s.userRepo.ExistsByEmail(ctx, email, uuid.Nil)
	if err != nil {
		return nil, response.NewInternalError("Failed to check email", err)
	}
	if taken {
		return nil, response.NewConflictError("User already exists", "")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, response.NewInternalError("Failed to hash password", err)
	}

	user := domain.NewUser(username, email, hash)
	user.FullName = trimPtr(req.FullName)
	now := s.now().UTC()
	user.LastLogin = &now

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflictError("User already exists", "")
		}
		return nil, response.NewInternalError("Failed to create user", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login verifies credentials, rejects banned and deleted accounts and stamps the last login
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.RecordLogin("invalid_credentials")
			return nil, response.NewUnauthorizedError("Invalid email or password", "")
		}
		return nil, response.NewInternalError("Failed to load user", err)
	}

	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		s.metrics.RecordLogin("invalid_credentials")
		return nil, response.NewUnauthorizedError("Invalid email or password", "")
	}

	if err := checkAccountStatus(user); err != nil {
		s.metrics.RecordLogin(string(user.Status))
		return nil, err
	}

	now := s.now().UTC()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user, "last_login"); err != nil {
		return nil, response.NewInternalError("Failed to update last login", err)
	}

	s.metrics.RecordLogin("success")
	return s.issue(user)
}

// Me returns the signed-in user
func (s *authServiceImpl) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, lookupError(err, "User not found", "Failed to load user")
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// Authenticate resolves a session token to an active user.
// The account status is read from the store on every call.
func (s *authServiceImpl) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, response.NewUnauthorizedError("Not authorized", "no token")
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, response.NewUnauthorizedError("Not authorized", "invalid or expired token")
	}

	userID, err := claims.UserIDValue()
	if err != nil {
		return nil, response.NewUnauthorizedError("Not authorized", "invalid token subject")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewUnauthorizedError("Not authorized", "user not found")
		}
		return nil, response.NewInternalError("Failed to load user", err)
	}

	if err := checkAccountStatus(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *authServiceImpl) issue(user *domain.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, response.NewInternalError("Failed to issue token", err)
	}
	return &dto.AuthResponse{
		User:  dto.NewUserResponse(user),
		Token: token,
	}, nil
}
