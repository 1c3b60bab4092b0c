package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forum-api/internal/domain"
)

func TestPassword_HashAndCompare(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong horse"), ErrPasswordMismatch)
}

func TestPassword_HashIsSalted(t *testing.T) {
	first, err := HashPassword("same password")
	require.NoError(t, err)
	second, err := HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	userID := uuid.New()

	token, err := m.Issue(userID, domain.UserRoleAdmin)
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	id, err := claims.UserIDValue()
	require.NoError(t, err)
	assert.Equal(t, userID, id)
	assert.Equal(t, domain.UserRoleAdmin, claims.Role)
}

func TestTokenManager_Verify_Rejects(t *testing.T) {
	userID := uuid.New()
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	expired := NewTokenManager("test-secret", time.Hour)
	expired.now = func() time.Time { return issued }
	expiredToken, err := expired.Issue(userID, domain.UserRoleUser)
	require.NoError(t, err)

	otherSecret, err := NewTokenManager("other-secret", time.Hour).Issue(userID, domain.UserRoleUser)
	require.NoError(t, err)

	noneSigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expiredToken},
		{name: "wrong secret", token: otherSecret},
		{name: "unsigned", token: noneSigned},
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
	}

	m := NewTokenManager("test-secret", time.Hour)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
