package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"forum-api/internal/domain"
)

type forumFixture struct {
	db       *gorm.DB
	author   *domain.User
	sections SectionRepository
	threads  ThreadRepository
	topics   TopicRepository
	comments CommentRepository
}

func newForumFixture(t *testing.T, db *gorm.DB) *forumFixture {
	t.Helper()
	author := domain.NewUser("author", "author@example.com", "hash")
	require.NoError(t, NewUserRepository(db).Create(context.Background(), author))

	return &forumFixture{
		db:       db,
		author:   author,
		sections: NewSectionRepository(db),
		threads:  NewThreadRepository(db),
		topics:   NewTopicRepository(db),
		comments: NewCommentRepository(db),
	}
}

func (f *forumFixture) section(t *testing.T, title string) *domain.Section {
	t.Helper()
	s := &domain.Section{Title: title, Slug: uuid.NewString()}
	require.NoError(t, f.sections.Create(context.Background(), s))
	return s
}

func (f *forumFixture) thread(t *testing.T, sectionID uuid.UUID) *domain.Thread {
	t.Helper()
	th := &domain.Thread{SectionID: sectionID, Title: uuid.NewString(), Slug: uuid.NewString()}
	require.NoError(t, f.threads.Create(context.Background(), th))
	return th
}

func (f *forumFixture) topic(t *testing.T, threadID uuid.UUID) *domain.Topic {
	t.Helper()
	tp := &domain.Topic{ThreadID: threadID, AuthorID: f.author.ID, Title: "topic", Slug: uuid.NewString(), Content: "body"}
	require.NoError(t, f.topics.Create(context.Background(), tp))
	return tp
}

func (f *forumFixture) comment(t *testing.T, topicID uuid.UUID, n int) *domain.Comment {
	t.Helper()
	c := &domain.Comment{TopicID: topicID, AuthorID: f.author.ID, Content: fmt.Sprintf("comment %d", n)}
	require.NoError(t, f.comments.Create(context.Background(), c))
	return c
}

func (f *forumFixture) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func (f *forumFixture) reload(t *testing.T, dest interface{}, id uuid.UUID) {
	t.Helper()
	require.NoError(t, f.db.Where("id = ?", id).First(dest).Error)
}
