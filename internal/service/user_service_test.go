package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forum-api/internal/domain"
	"forum-api/internal/dto"
	"forum-api/internal/response"
)

func TestUserService_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.user(t, "palmlover")
	env.user(t, "taken")

	t.Run("empty request", func(t *testing.T) {
		_, err := env.account.UpdateProfile(ctx, user.ID, &dto.UpdateProfileRequest{})
		assertAppError(t, err, response.ErrCodeValidation, "You haven't made any changes")
	})

	t.Run("same values", func(t *testing.T) {
		_, err := env.account.UpdateProfile(ctx, user.ID, &dto.UpdateProfileRequest{Username: strPtr("palmlover")})
		assertAppError(t, err, response.ErrCodeValidation, "You haven't made any changes")
	})

	t.Run("username taken", func(t *testing.T) {
		_, err := env.account.UpdateProfile(ctx, user.ID, &dto.UpdateProfileRequest{Username: strPtr("taken")})
		assertAppError(t, err, response.ErrCodeAlreadyExists, "Username already taken")
	})

	t.Run("email taken", func(t *testing.T) {
		_, err := env.account.UpdateProfile(ctx, user.ID, &dto.UpdateProfileRequest{Email: strPtr("TAKEN@example.com")})
		assertAppError(t, err, response.ErrCodeAlreadyExists, "Email already in use")
	})

	t.Run("blank username", func(t *testing.T) {
		for _, username := range []string{"", "   ", " a "} {
			_, err := env.account.UpdateProfile(ctx, user.ID, &dto.UpdateProfileRequest{Username: strPtr(username)})
			assertAppError(t, err, response.ErrCodeValidation, "Invalid username")
		}
	})

	t.Run("blank email", func(t *testing.T) {
		for _, email := range []string{"", "   "} {
			_, err := env.account.UpdateProfile(ctx, user.ID, &dto.UpdateProfileRequest{Email: strPtr(email)})
			assertAppError(t, err, response.ErrCodeValidation, "Email cannot be empty")
		}

		var stored domain.User
		env.reload(t, &stored, user.ID)
		assert.Equal(t, "palmlover", stored.Username)
		require.NotNil(t, stored.Email)
		assert.Equal(t, "palmlover@example.com", *stored.Email)
	})

	t.Run("applies fields", func(t *testing.T) {
		resp, err := env.account.UpdateProfile(ctx, user.ID, &dto.UpdateProfileRequest{
			Bio:      strPtr("Growing palms"),
			Location: strPtr(" Lisbon "),
			FullName: strPtr("Jane Palm"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Growing palms", resp.Bio)
		assert.Equal(t, "Lisbon", resp.Location)
		require.NotNil(t, resp.FullName)
		assert.Equal(t, "Jane Palm", *resp.FullName)
	})
}

func TestUserService_UploadAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.user(t, "palmlover")

	_, err := env.account.UploadAvatar(ctx, user.ID, strings.NewReader("x"), 1, "application/pdf")
	assertAppError(t, err, response.ErrCodeValidation, "Unsupported image type")

	_, err = env.account.UploadAvatar(ctx, user.ID, strings.NewReader("x"), 2<<20, "image/png")
	assertAppError(t, err, response.ErrCodeValidation, "Avatar is too large")

	first, err := env.account.UploadAvatar(ctx, user.ID, strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)
	assert.NotEmpty(t, first.AvatarURL)
	assert.Equal(t, first.AvatarURL, first.User.Avatar)

	_, err = env.account.UploadAvatar(ctx, user.ID, strings.NewReader("jpg"), 3, "image/jpeg")
	require.NoError(t, err)

	// Then the first object was dropped once it was replaced
	require.Len(t, env.s3.Uploaded, 2)
	assert.Equal(t, []string{env.s3.Uploaded[0]}, env.s3.DeletedKeys())
}

func TestUserService_UploadAvatarFailure(t *testing.T) {
	env := newTestEnv(t)
	user := env.user(t, "palmlover")
	env.s3.UploadFileFunc = func(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
		return "", errors.New("bucket unavailable")
	}

	_, err := env.account.UploadAvatar(context.Background(), user.ID, strings.NewReader("png"), 3, "image/png")
	assertAppError(t, err, response.ErrCodeInternal, "")
}

func TestUserService_ChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered, err := env.auth.Register(ctx, &dto.RegisterRequest{Username: "palmlover", Email: "jane@example.com", Password: "old-password"})
	require.NoError(t, err)
	userID := registered.User.ID

	err = env.account.ChangePassword(ctx, userID, &dto.ChangePasswordRequest{
		CurrentPassword: "wrong", NewPassword: "new-password", ConfirmNewPassword: "new-password",
	})
	assertAppError(t, err, response.ErrCodeValidation, "Incorrect current password")

	err = env.account.ChangePassword(ctx, userID, &dto.ChangePasswordRequest{
		CurrentPassword: "old-password", NewPassword: "old-password", ConfirmNewPassword: "old-password",
	})
	assertAppError(t, err, response.ErrCodeValidation, "New password must be different from current password")

	err = env.account.ChangePassword(ctx, userID, &dto.ChangePasswordRequest{
		CurrentPassword: "old-password", NewPassword: "new-password", ConfirmNewPassword: "new-password",
	})
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "new-password"})
	require.NoError(t, err)
}

func TestUserService_ForgotAndResetPassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.auth.Register(ctx, &dto.RegisterRequest{Username: "palmlover", Email: "jane@example.com", Password: "old-password"})
	require.NoError(t, err)

	// Unknown emails get the same answer and no token
	unknown, err := env.account.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "If user exists, reset link sent", unknown.Message)
	assert.Empty(t, unknown.ResetToken)

	resp, err := env.account.ForgotPassword(ctx, &dto.ForgotPasswordRequest{Email: "Jane@example.com"})
	require.NoError(t, err)
	assert.Equal(t, unknown.Message, resp.Message)
	require.Len(t, resp.ResetToken, 64)

	select {
	case mail := <-env.mailer.Sent:
		assert.Equal(t, "jane@example.com", mail.To)
		assert.Equal(t, "Reset your password | Forum", mail.Subject)
		assert.Contains(t, mail.HTML, "http://localhost:3000/reset-password/"+resp.ResetToken)
	case <-time.After(2 * time.Second):
		t.Fatal("reset email was not sent")
	}

	// The stored token is a digest, never the raw token
	stored, err := env.users.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.PasswordResetToken)
	assert.NotEqual(t, resp.ResetToken, *stored.PasswordResetToken)

	err = env.account.ResetPassword(ctx, "bogus", &dto.ResetPasswordRequest{NewPassword: "new-password", ConfirmNewPassword: "new-password"})
	assertAppError(t, err, response.ErrCodeUnauthorized, "Invalid or expired reset token")

	err = env.account.ResetPassword(ctx, resp.ResetToken, &dto.ResetPasswordRequest{NewPassword: "new-password", ConfirmNewPassword: "new-password"})
	require.NoError(t, err)

	// The token is single use
	err = env.account.ResetPassword(ctx, resp.ResetToken, &dto.ResetPasswordRequest{NewPassword: "other-password", ConfirmNewPassword: "other-password"})
	assertAppError(t, err, response.ErrCodeUnauthorized, "")

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "jane@example.com", Password: "new-password"})
	require.NoError(t, err)
}

func TestUserService_ResetTokenExpires(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.user(t, "palmlover")

	token, hash, err := newResetToken()
	require.NoError(t, err)
	expired := time.Now().UTC().Add(-time.Minute)
	user.PasswordResetToken = &hash
	user.PasswordResetExpires = &expired
	require.NoError(t, env.users.Update(ctx, user, "password_reset_token", "password_reset_expires"))

	err = env.account.ResetPassword(ctx, token, &dto.ResetPasswordRequest{NewPassword: "new-password", ConfirmNewPassword: "new-password"})
	assertAppError(t, err, response.ErrCodeUnauthorized, "Invalid or expired reset token")
}

func TestUserService_DeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.user(t, "palmlover")
	require.NoError(t, env.notifications.Notify(ctx, user.ID, domain.NotificationTypeBan, "hello there"))

	require.NoError(t, env.account.DeleteAccount(ctx, user.ID))

	_, err := env.users.FindByID(ctx, user.ID)
	assert.Error(t, err)
	assert.Zero(t, env.count(t, &domain.Notification{}, "user_id = ?", user.ID))

	err = env.account.DeleteAccount(ctx, user.ID)
	assertAppError(t, err, response.ErrCodeNotFound, "")
}

func TestHashResetToken(t *testing.T) {
	token, hash, err := newResetToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Equal(t, hash, hashResetToken(token))
	assert.NotEqual(t, token, hash)
}
