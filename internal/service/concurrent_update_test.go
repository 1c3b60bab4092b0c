package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/internal/domain"
	"forum-api/internal/dto"
	"forum-api/internal/repository"
	"forum-api/internal/response"
)

// interleavingUserRepository calls between after each successful read, the way
// a concurrent request lands between a service's read and its write
type interleavingUserRepository struct {
	repository.UserRepository
	between func(userID uuid.UUID)
}

func (r *interleavingUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := r.UserRepository.FindByID(ctx, id)
	if err == nil && r.between != nil {
		r.between(user.ID)
	}
	return user, err
}

func (r *interleavingUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := r.UserRepository.FindByEmail(ctx, email)
	if err == nil && r.between != nil {
		r.between(user.ID)
	}
	return user, err
}

// banOnce bans the account the first time it is read
func (e *testEnv) banOnce(t *testing.T, adminID uuid.UUID) func(uuid.UUID) {
	done := false
	return func(userID uuid.UUID) {
		if done {
			return
		}
		done = true
		_, err := e.admin.Ban(context.Background(), adminID, userID)
		require.NoError(t, err)
	}
}

func (e *testEnv) assertBanned(t *testing.T, userID uuid.UUID) {
	t.Helper()
	var stored domain.User
	e.reload(t, &stored, userID)
	assert.Equal(t, domain.UserStatusBanned, stored.Status)
	assert.NotNil(t, stored.BannedAt)
}

func TestLogin_BanDuringLoginSticks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminUser(t)

	_, err := env.auth.Register(ctx, &dto.RegisterRequest{Username: "palmlover", Email: "jane@example.com", Password: "s3cret-password"})
	require.NoError(t, err)

	// Given a ban that lands after login read the account
	users := &interleavingUserRepository{UserRepository: env.users}
	users.between = env.banOnce(t, admin.ID)
	authSvc := NewAuthService(users, env.tokens, nil, zap.NewNop())

	// When the login finishes
	resp, err := authSvc.Login(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "s3cret-password"})
	require.NoError(t, err)

	// Then the stored account is still banned and the fresh token is refused
	env.assertBanned(t, resp.User.ID)
	_, err = env.auth.Authenticate(ctx, resp.Token)
	assertAppError(t, err, response.ErrCodeForbidden, "Your account is banned")
}

func TestUserService_BanDuringWriteSticks(t *testing.T) {
	tests := []struct {
		name string
		run  func(ctx context.Context, svc UserService, userID uuid.UUID) error
	}{
		{
			name: "update profile",
			run: func(ctx context.Context, svc UserService, userID uuid.UUID) error {
				_, err := svc.UpdateProfile(ctx, userID, &dto.UpdateProfileRequest{Bio: strPtr("Growing palms")})
				return err
			},
		},
		{
			name: "upload avatar",
			run: func(ctx context.Context, svc UserService, userID uuid.UUID) error {
				_, err := svc.UploadAvatar(ctx, userID, strings.NewReader("png"), 3, "image/png")
				return err
			},
		},
		{
			name: "change password",
			run: func(ctx context.Context, svc UserService, userID uuid.UUID) error {
				return svc.ChangePassword(ctx, userID, &dto.ChangePasswordRequest{
					CurrentPassword:    "s3cret-password",
					NewPassword:        "new-password",
					ConfirmNewPassword: "new-password",
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			admin := env.adminUser(t)
			registered, err := env.auth.Register(ctx, &dto.RegisterRequest{Username: "palmlover", Email: "jane@example.com", Password: "s3cret-password"})
			require.NoError(t, err)

			users := &interleavingUserRepository{UserRepository: env.users}
			users.between = env.banOnce(t, admin.ID)
			svc := NewUserService(users, env.notifications, env.s3, env.mailer, UserServiceConfig{MaxAvatarBytes: 1 << 20}, nil, zap.NewNop())

			require.NoError(t, tt.run(ctx, svc, registered.User.ID))

			env.assertBanned(t, registered.User.ID)
		})
	}
}

func TestAdminUserService_StaleTransitionIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminUser(t)
	target := env.user(t, "palmlover")

	// Given another admin deactivates the account while this ban is in flight
	deactivated := false
	users := &interleavingUserRepository{UserRepository: env.users}
	users.between = func(userID uuid.UUID) {
		if deactivated {
			return
		}
		deactivated = true
		_, err := env.admin.Deactivate(ctx, admin.ID, userID)
		require.NoError(t, err)
	}
	adminSvc := NewAdminUserService(users, env.notifications, env.s3, nil, zap.NewNop())

	// When the ban is written
	_, err := adminSvc.Ban(ctx, admin.ID, target.ID)

	// Then it is refused and the deactivation stands
	assertAppError(t, err, response.ErrCodeInvalidState, "")
	var stored domain.User
	env.reload(t, &stored, target.ID)
	assert.Equal(t, domain.UserStatusDeleted, stored.Status)
	assert.Nil(t, stored.BannedAt)
	require.NotNil(t, stored.Backup())
	assert.Equal(t, "palmlover", stored.Backup().Username)
}

// interleavingTopicRepository calls between once, after the first successful read
type interleavingTopicRepository struct {
	repository.TopicRepository
	between func(topicID uuid.UUID)
}

func (r *interleavingTopicRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	topic, err := r.TopicRepository.FindByID(ctx, id)
	if err == nil && r.between != nil {
		between := r.between
		r.between = nil
		between(topic.ID)
	}
	return topic, err
}

func TestTopicService_FlagsDoNotOverwriteEachOther(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.user(t, "palmlover")
	thread := env.thread(t, env.section(t, "Palms").ID, "Care")
	topic := env.topic(t, author.ID, thread.ID, "Watering")

	newService := func(between func(uuid.UUID)) TopicService {
		topics := &interleavingTopicRepository{TopicRepository: repository.NewTopicRepository(env.db), between: between}
		return NewTopicService(topics, repository.NewThreadRepository(env.db), repository.NewCascadeRepository(env.db), nil, zap.NewNop())
	}

	t.Run("close lands during toggle-pin", func(t *testing.T) {
		svc := newService(func(id uuid.UUID) {
			_, err := env.topics.CloseTopic(ctx, id)
			require.NoError(t, err)
		})

		pinned, err := svc.TogglePin(ctx, topic.ID)
		require.NoError(t, err)
		assert.True(t, pinned.Pinned)

		stored, err := env.topics.GetTopic(ctx, topic.ID)
		require.NoError(t, err)
		assert.True(t, stored.Pinned)
		assert.True(t, stored.Closed)
	})

	t.Run("toggle-pin lands during open", func(t *testing.T) {
		svc := newService(func(id uuid.UUID) {
			_, err := env.topics.TogglePin(ctx, id)
			require.NoError(t, err)
		})

		opened, err := svc.OpenTopic(ctx, topic.ID)
		require.NoError(t, err)
		assert.False(t, opened.Closed)

		stored, err := env.topics.GetTopic(ctx, topic.ID)
		require.NoError(t, err)
		assert.False(t, stored.Pinned)
		assert.False(t, stored.Closed)
	})

	t.Run("second toggle from a stale read", func(t *testing.T) {
		svc := newService(func(id uuid.UUID) {
			_, err := env.topics.TogglePin(ctx, id)
			require.NoError(t, err)
		})

		_, err := svc.TogglePin(ctx, topic.ID)
		assertAppError(t, err, response.ErrCodeInvalidState, "")

		stored, err := env.topics.GetTopic(ctx, topic.ID)
		require.NoError(t, err)
		assert.True(t, stored.Pinned, "only the first toggle applies")
	})
}
