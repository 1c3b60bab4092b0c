package client

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockS3Client implements S3ClientInterface for testing without AWS credentials
type MockS3Client struct {
	Bucket   string
	Region   string
	Endpoint string

	// Optional function overrides for custom test behavior
	UploadFileFunc func(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
	DeleteFileFunc func(ctx context.Context, key string) error

	mu       sync.Mutex
	Uploaded []string
	Deleted  []string
}

// NewMockS3Client creates a new mock S3 client for testing
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Bucket: "test-bucket",
		Region: "us-east-1",
	}
}

func (m *MockS3Client) GenerateAvatarKey(userID uuid.UUID, fileExt string) string {
	return avatarKey("avatars", userID, fileExt, time.Now())
}

// UploadFile records the key and returns its URL
func (m *MockS3Client) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	if m.UploadFileFunc != nil {
		return m.UploadFileFunc(ctx, key, file, contentType)
	}

	m.mu.Lock()
	m.Uploaded = append(m.Uploaded, key)
	m.mu.Unlock()
	return m.GetFileURL(key), nil
}

// DeleteFile records the key
func (m *MockS3Client) DeleteFile(ctx context.Context, key string) error {
	if m.DeleteFileFunc != nil {
		return m.DeleteFileFunc(ctx, key)
	}

	m.mu.Lock()
	m.Deleted = append(m.Deleted, key)
	m.mu.Unlock()
	return nil
}

func (m *MockS3Client) GetFileURL(key string) string {
	return objectURL(m.Bucket, m.Region, m.Endpoint, "", key)
}

// DeletedKeys returns the keys passed to DeleteFile
func (m *MockS3Client) DeletedKeys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deleted...)
}

// Ensure MockS3Client implements S3ClientInterface
var _ S3ClientInterface = (*MockS3Client)(nil)
