package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"forum-api/internal/auth"
	"forum-api/internal/client"
	"forum-api/internal/domain"
	"forum-api/internal/dto"
	"forum-api/internal/repository"
	"forum-api/internal/response"
	"forum-api/internal/testutil"
)

// testEnv wires every service against one in-memory sqlite database
type testEnv struct {
	db     *gorm.DB
	users  repository.UserRepository
	tokens *auth.TokenManager
	s3     *client.MockS3Client
	mailer *client.MockMailer
	cache  *MockUnreadCountCache

	auth          AuthService
	account       UserService
	admin         AdminUserService
	sections      SectionService
	threads       ThreadService
	topics        TopicService
	comments      CommentService
	notifications NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	logger := zap.NewNop()

	users := repository.NewUserRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	threadRepo := repository.NewThreadRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	cascadeRepo := repository.NewCascadeRepository(db)

	env := &testEnv{
		db:     db,
		users:  users,
		tokens: auth.NewTokenManager("test-secret", time.Hour),
		s3:     client.NewMockS3Client(),
		mailer: client.NewMockMailer(),
		cache:  NewMockUnreadCountCache(),
	}

	env.notifications = NewNotificationService(repository.NewNotificationRepository(db), env.cache, logger)
	env.auth = NewAuthService(users, env.tokens, nil, logger)
	env.account = NewUserService(users, env.notifications, env.s3, env.mailer, UserServiceConfig{
		ClientURL:        "http://localhost:3000",
		ExposeResetToken: true,
		MaxAvatarBytes:   1 << 20,
	}, nil, logger)
	env.admin = NewAdminUserService(users, env.notifications, env.s3, nil, logger)
	env.sections = NewSectionService(sectionRepo, cascadeRepo, nil, logger)
	env.threads = NewThreadService(threadRepo, sectionRepo, cascadeRepo, nil, logger)
	env.topics = NewTopicService(topicRepo, threadRepo, cascadeRepo, nil, logger)
	env.comments = NewCommentService(commentRepo, topicRepo, cascadeRepo, env.notifications, nil, logger)
	return env
}

// user inserts an active account without going through bcrypt
func (e *testEnv) user(t *testing.T, username string) *domain.User {
	t.Helper()
	u := domain.NewUser(username, username+"@example.com", "hash")
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) adminUser(t *testing.T) *domain.User {
	t.Helper()
	u := e.user(t, "admin-"+uuid.NewString()[:8])
	u.Role = domain.UserRoleAdmin
	require.NoError(t, e.users.Update(context.Background(), u, "role"))
	return u
}

func (e *testEnv) section(t *testing.T, title string) *dto.SectionResponse {
	t.Helper()
	s, err := e.sections.CreateSection(context.Background(), &dto.CreateSectionRequest{Title: title})
	require.NoError(t, err)
	return s
}

func (e *testEnv) thread(t *testing.T, sectionID uuid.UUID, title string) *dto.ThreadResponse {
	t.Helper()
	th, err := e.threads.CreateThread(context.Background(), &dto.CreateThreadRequest{SectionID: sectionID, Title: title})
	require.NoError(t, err)
	return th
}

func (e *testEnv) topic(t *testing.T, authorID, threadID uuid.UUID, title string) *dto.TopicResponse {
	t.Helper()
	tp, err := e.topics.CreateTopic(context.Background(), authorID, threadID, &dto.CreateTopicRequest{Title: title, Content: "Some **content**"})
	require.NoError(t, err)
	return tp
}

func (e *testEnv) comment(t *testing.T, authorID, topicID uuid.UUID, content string) *dto.CommentResponse {
	t.Helper()
	c, err := e.comments.CreateComment(context.Background(), authorID, topicID, &dto.CreateCommentRequest{Content: content})
	require.NoError(t, err)
	return c
}

func (e *testEnv) reload(t *testing.T, dest interface{}, id uuid.UUID) {
	t.Helper()
	require.NoError(t, e.db.Where("id = ?", id).First(dest).Error)
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

// assertAppError checks the code and, when given, the message of an AppError
func assertAppError(t *testing.T, err error, code string, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	if message != "" {
		assert.Equal(t, message, appErr.Message)
	}
}

func strPtr(s string) *string { return &s }
