package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forum-api/internal/domain"
	"forum-api/internal/pagination"
	"forum-api/internal/response"
)

func TestAdminUserService_BanUnbanRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminUser(t)
	target := env.user(t, "palmlover")

	// Given an active user, when banned
	banned, err := env.admin.Ban(ctx, admin.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusBanned, banned.Status)
	assert.NotNil(t, banned.BannedAt)

	// Then a second ban is refused
	_, err = env.admin.Ban(ctx, admin.ID, target.ID)
	assertAppError(t, err, response.ErrCodeInvalidState, "User is already banned")

	// When unbanned, the account is active again with no ban timestamp
	unbanned, err := env.admin.Unban(ctx, admin.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusActive, unbanned.Status)
	assert.Nil(t, unbanned.BannedAt)

	_, err = env.admin.Unban(ctx, admin.ID, target.ID)
	assertAppError(t, err, response.ErrCodeInvalidState, "User is not banned")

	// And the user was notified of both transitions
	assert.Equal(t, int64(2), env.count(t, &domain.Notification{}, "user_id = ?", target.ID))
	assert.Contains(t, env.cache.Invalidated, target.ID)
}

func TestAdminUserService_InvalidTransitions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminUser(t)
	target := env.user(t, "palmlover")

	_, err := env.admin.Restore(ctx, admin.ID, target.ID)
	assertAppError(t, err, response.ErrCodeInvalidState, "User is not deleted")

	_, err = env.admin.Deactivate(ctx, admin.ID, target.ID)
	require.NoError(t, err)

	_, err = env.admin.Deactivate(ctx, admin.ID, target.ID)
	assertAppError(t, err, response.ErrCodeInvalidState, "User is already deactivated")

	_, err = env.admin.Ban(ctx, admin.ID, target.ID)
	assertAppError(t, err, response.ErrCodeInvalidState, "")

	_, err = env.admin.Unban(ctx, admin.ID, target.ID)
	assertAppError(t, err, response.ErrCodeInvalidState, "User is not banned")
}

func TestAdminUserService_CannotTargetSelf(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminUser(t)

	_, err := env.admin.Ban(ctx, admin.ID, admin.ID)
	assertAppError(t, err, response.ErrCodeForbidden, "")

	err = env.admin.PermanentDelete(ctx, admin.ID, admin.ID)
	assertAppError(t, err, response.ErrCodeForbidden, "")
}

func TestAdminUserService_UnknownUser(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminUser(t)
	ghost := env.user(t, "ghost")
	require.NoError(t, env.users.Delete(context.Background(), ghost.ID))

	_, err := env.admin.Ban(context.Background(), admin.ID, ghost.ID)
	assertAppError(t, err, response.ErrCodeNotFound, "User not found")
}

func TestAdminUserService_DeactivateAnonymizes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminUser(t)
	target := env.user(t, "palmlover")

	resp, err := env.admin.Deactivate(ctx, admin.ID, target.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.UserStatusDeleted, resp.Status)
	assert.Equal(t, domain.AnonymizedUsername(target.ID), resp.Username)
	assert.Nil(t, resp.Email)
	assert.NotNil(t, resp.DeletedAt)

	var stored domain.User
	env.reload(t, &stored, target.ID)
	require.NotNil(t, stored.Backup())
	assert.Equal(t, "palmlover", stored.Backup().Username)
}

func TestAdminUserService_RestoreConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminUser(t)
	target := env.user(t, "palmlover")

	_, err := env.admin.Deactivate(ctx, admin.ID, target.ID)
	require.NoError(t, err)

	// Given someone claimed the freed username
	env.user(t, "palmlover")

	_, err = env.admin.Restore(ctx, admin.ID, target.ID)
	assertAppError(t, err, response.ErrCodeAlreadyExists, "")

	var stored domain.User
	env.reload(t, &stored, target.ID)
	assert.Equal(t, domain.UserStatusDeleted, stored.Status)
	assert.NotNil(t, stored.Backup())
}

func TestAdminUserService_PermanentDeleteKeepsContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminUser(t)
	author := env.user(t, "palmlover")
	author.AvatarKey = "avatars/old.png"
	require.NoError(t, env.users.Update(ctx, author, "avatar_key"))

	section := env.section(t, "Palms")
	thread := env.thread(t, section.ID, "Care")
	topic := env.topic(t, author.ID, thread.ID, "Watering")

	require.NoError(t, env.admin.PermanentDelete(ctx, admin.ID, author.ID))

	err := env.admin.PermanentDelete(ctx, admin.ID, author.ID)
	assertAppError(t, err, response.ErrCodeNotFound, "")

	got, err := env.topics.GetTopic(ctx, topic.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Author)
	assert.Equal(t, []string{"avatars/old.png"}, env.s3.DeletedKeys())
}

func TestAdminUserService_ListsAndStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminUser(t)
	a := env.user(t, "alpha")
	b := env.user(t, "bravo")
	env.user(t, "charlie")

	_, err := env.admin.Ban(ctx, admin.ID, a.ID)
	require.NoError(t, err)
	_, err = env.admin.Deactivate(ctx, admin.ID, b.ID)
	require.NoError(t, err)

	all, err := env.admin.ListUsers(ctx, pagination.RawQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)

	banned, err := env.admin.ListBannedUsers(ctx, pagination.RawQuery{})
	require.NoError(t, err)
	require.Len(t, banned.Items, 1)
	assert.Equal(t, a.ID, banned.Items[0].ID)

	deleted, err := env.admin.ListDeletedUsers(ctx, pagination.RawQuery{})
	require.NoError(t, err)
	require.Len(t, deleted.Items, 1)
	assert.Equal(t, b.ID, deleted.Items[0].ID)

	_, err = env.admin.ListUsers(ctx, pagination.RawQuery{SortBy: "password"})
	assertAppError(t, err, response.ErrCodeValidation, "")

	section := env.section(t, "Palms")
	thread := env.thread(t, section.ID, "Care")
	topic := env.topic(t, a.ID, thread.ID, "Watering")
	env.comment(t, a.ID, topic.ID, "first")
	env.comment(t, a.ID, topic.ID, "second")

	stats, err := env.admin.Stats(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TopicsCount)
	assert.Equal(t, int64(2), stats.CommentsCount)
}

// Deactivating and then restoring any profile gives back the profile unchanged
func TestProperty_DeactivateRestoreRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.adminUser(t)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	epoch := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	properties.Property("restore(deactivate(u)) keeps every profile field", prop.ForAll(
		func(bio, location, fullName, avatar string, loginMinutes, birthDays int, banned bool) bool {
			n++
			user := domain.NewUser(fmt.Sprintf("user%d", n), fmt.Sprintf("user%d@example.com", n), "hash")
			user.Bio = bio
			user.Location = location
			if fullName != "" {
				user.FullName = &fullName
			}
			if avatar != "" {
				user.Avatar = "https://cdn.example.com/avatars/" + avatar + ".png"
			}
			if loginMinutes > 0 {
				lastLogin := epoch.Add(time.Duration(loginMinutes) * time.Minute)
				user.LastLogin = &lastLogin
			}
			if birthDays > 0 {
				birthday := epoch.AddDate(0, 0, -birthDays)
				user.Birthday = &birthday
			}
			if err := env.users.Create(ctx, user); err != nil {
				return false
			}
			if banned {
				if _, err := env.admin.Ban(ctx, admin.ID, user.ID); err != nil {
					return false
				}
			}

			var before domain.User
			if err := env.db.Where("id = ?", user.ID).First(&before).Error; err != nil {
				return false
			}

			if _, err := env.admin.Deactivate(ctx, admin.ID, user.ID); err != nil {
				return false
			}
			if _, err := env.admin.Restore(ctx, admin.ID, user.ID); err != nil {
				return false
			}

			var after domain.User
			if err := env.db.Where("id = ?", user.ID).First(&after).Error; err != nil {
				return false
			}

			return after.Status == domain.UserStatusActive &&
				after.Backup() == nil &&
				after.DeletedAt == nil &&
				after.Username == before.Username &&
				*after.Email == *before.Email &&
				after.Bio == before.Bio &&
				after.Location == before.Location &&
				after.Avatar == user.Avatar &&
				equalTimePtr(before.LastLogin, user.LastLogin) &&
				equalTimePtr(before.Birthday, user.Birthday) &&
				equalStringPtr(after.FullName, before.FullName) &&
				equalTimePtr(after.LastLogin, before.LastLogin) &&
				equalTimePtr(after.Birthday, before.Birthday)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(0, 500000),
		gen.IntRange(0, 30000),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
