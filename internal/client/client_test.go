package client

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"forum-api/internal/config"
)

func TestNewS3Client_Validation(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.S3Config
		errContains string
	}{
		{
			name:        "missing bucket",
			cfg:         config.S3Config{Region: "us-east-1"},
			errContains: "bucket is required",
		},
		{
			name:        "missing region",
			cfg:         config.S3Config{Bucket: "avatars"},
			errContains: "region is required",
		},
		{
			name:        "custom endpoint without credentials",
			cfg:         config.S3Config{Bucket: "avatars", Region: "us-east-1", Endpoint: "http://minio:9000"},
			errContains: "access key and secret key are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Client(context.Background(), &tt.cfg, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestS3Client_GenerateAvatarKeyAndURL(t *testing.T) {
	cfg := &config.S3Config{
		Bucket:         "forum",
		Region:         "us-east-1",
		AccessKey:      "test-access-key",
		SecretKey:      "test-secret-key",
		Endpoint:       "http://minio:9000",
		PublicEndpoint: "http://localhost:9000/",
		AvatarPrefix:   "/avatars/",
	}
	c, err := NewS3Client(context.Background(), cfg, nil)
	require.NoError(t, err)

	userID := uuid.New()
	key := c.GenerateAvatarKey(userID, ".png")

	now := time.Now()
	assert.True(t, strings.HasPrefix(key, "avatars/"+userID.String()+"/"+now.Format("2006")+"/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotEqual(t, key, c.GenerateAvatarKey(userID, ".png"))

	assert.Equal(t, "http://localhost:9000/forum/"+key, c.GetFileURL(key))
}

func TestObjectURL_AWS(t *testing.T) {
	assert.Equal(t,
		"https://forum.s3.eu-west-1.amazonaws.com/avatars/a.png",
		objectURL("forum", "eu-west-1", "", "", "avatars/a.png"),
	)
}

func TestAvatarExtension(t *testing.T) {
	ext, ok := AvatarExtension("IMAGE/PNG")
	assert.True(t, ok)
	assert.Equal(t, ".png", ext)

	_, ok = AvatarExtension("application/pdf")
	assert.False(t, ok)
}

func TestMockS3Client_RecordsCalls(t *testing.T) {
	m := NewMockS3Client()
	ctx := context.Background()

	url, err := m.UploadFile(ctx, "avatars/a.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://test-bucket.s3.us-east-1.amazonaws.com/avatars/a.png", url)

	require.NoError(t, m.DeleteFile(ctx, "avatars/old.png"))
	assert.Equal(t, []string{"avatars/old.png"}, m.DeletedKeys())
}

func TestResetPasswordEmail(t *testing.T) {
	html, err := ResetPasswordEmail("<jane>", "http://localhost:3000/reset-password/abc", 15*time.Minute)
	require.NoError(t, err)

	assert.Contains(t, html, "http://localhost:3000/reset-password/abc")
	assert.Contains(t, html, "<b>15 minutes</b>")
	assert.Contains(t, html, "&lt;jane&gt;", "username must be escaped")
	assert.NotContains(t, html, "<jane>")
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("forum@example.com", "jane@example.com", "Reset your password", "<p>hi</p>"))

	assert.True(t, strings.HasPrefix(msg, "From: forum@example.com\r\nTo: jane@example.com\r\nSubject: Reset your password\r\n"))
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n<p>hi</p>")
}

func TestNewMailer_WithoutHostLogs(t *testing.T) {
	mailer := NewMailer(&config.SMTPConfig{}, nil, zap.NewNop())

	_, ok := mailer.(*LogMailer)
	assert.True(t, ok)
	assert.NoError(t, mailer.Send(context.Background(), "jane@example.com", "subject", "<p>body</p>"))
}

func TestSMTPMailer_CanceledContext(t *testing.T) {
	mailer := NewMailer(&config.SMTPConfig{Host: "127.0.0.1", Port: 1}, nil, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, mailer.Send(ctx, "jane@example.com", "subject", "body"), context.Canceled)
}
