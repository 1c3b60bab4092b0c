package client

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appConfig "forum-api/internal/config"
	"forum-api/internal/metrics"
)

// allowed avatar content types and the extension stored with them
var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AvatarExtension returns the file extension for an accepted avatar content type
func AvatarExtension(contentType string) (string, bool) {
	ext, ok := avatarExtensions[strings.ToLower(contentType)]
	return ext, ok
}

// S3ClientInterface defines the object storage operations used for avatars
type S3ClientInterface interface {
	GenerateAvatarKey(userID uuid.UUID, fileExt string) string
	UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error)
	DeleteFile(ctx context.Context, key string) error
	GetFileURL(key string) string
}

// S3Client wraps AWS S3 client and implements S3ClientInterface
type S3Client struct {
	client         *s3.Client
	bucket         string
	region         string
	endpoint       string
	publicEndpoint string
	avatarPrefix   string
	metrics        *metrics.Metrics
}

// NewS3Client creates a new S3 client. A custom endpoint selects MinIO-style path addressing.
func NewS3Client(ctx context.Context, cfg *appConfig.S3Config, m *metrics.Metrics) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("S3 region is required")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Endpoint != "" {
		if cfg.AccessKey == "" || cfg.SecretKey == "" {
			return nil, fmt.Errorf("access key and secret key are required for a custom S3 endpoint")
		}
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	prefix := strings.Trim(cfg.AvatarPrefix, "/")
	if prefix == "" {
		prefix = "avatars"
	}

	return &S3Client{
		client:         s3Client,
		bucket:         cfg.Bucket,
		region:         cfg.Region,
		endpoint:       cfg.Endpoint,
		publicEndpoint: cfg.PublicEndpoint,
		avatarPrefix:   prefix,
		metrics:        m,
	}, nil
}

// GenerateAvatarKey builds a unique object key
// Format: {prefix}/{userId}/{year}/{month}/{uuid}.ext
func (c *S3Client) GenerateAvatarKey(userID uuid.UUID, fileExt string) string {
	return avatarKey(c.avatarPrefix, userID, fileExt, time.Now())
}

func avatarKey(prefix string, userID uuid.UUID, fileExt string, now time.Time) string {
	return path.Join(prefix, userID.String(), now.Format("2006"), now.Format("01"), uuid.NewString()+fileExt)
}

// UploadFile uploads an object and returns its public URL
func (c *S3Client) UploadFile(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
	start := time.Now()
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	c.record("s3:PutObject", "PUT", start, err)
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return c.GetFileURL(key), nil
}

// DeleteFile deletes an object
func (c *S3Client) DeleteFile(ctx context.Context, key string) error {
	start := time.Now()
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	c.record("s3:DeleteObject", "DELETE", start, err)
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// GetFileURL returns the public URL for an object
func (c *S3Client) GetFileURL(key string) string {
	return objectURL(c.bucket, c.region, c.endpoint, c.publicEndpoint, key)
}

func objectURL(bucket, region, endpoint, publicEndpoint, key string) string {
	base := publicEndpoint
	if base == "" {
		base = endpoint
	}
	if base != "" {
		// e.g. http://localhost:9000/bucket/key
		return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(base, "/"), bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}

func (c *S3Client) record(endpoint, method string, start time.Time, err error) {
	if c.metrics != nil {
		c.metrics.RecordExternalAPICall(endpoint, method, 0, time.Since(start), err)
	}
}
