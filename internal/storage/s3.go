package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	cfg "brandcanvas/internal/config"
)

// ErrNotConfigured is returned by upload operations when no object
// storage backend is configured. Callers treat unmigrated inline
// payloads as an expected outcome in that mode, not a failure.
var ErrNotConfigured = errors.New("object storage not configured")

// ObjectStore is the durable blob backend the reconciler migrates inline
// payloads into. Keys are namespaced {userID}/{canvasID}/{slotKey}.
type ObjectStore interface {
	// UploadImage stores image or video bytes verbatim and returns the
	// public URL. contentType drives the stored extension and metadata.
	UploadImage(ctx context.Context, data []byte, contentType, userID, canvasID, slotKey string) (string, error)

	// UploadPDF stores PDF bytes and returns the public URL.
	UploadPDF(ctx context.Context, data []byte, userID, canvasID, slotKey string) (string, error)

	// Delete removes the object at the given key.
	Delete(ctx context.Context, key string) error

	// IsConfigured reports whether a real backend is wired. When false,
	// uploads fail with ErrNotConfigured and migration becomes a no-op.
	IsConfigured() bool
}

// S3Store implements ObjectStore for S3-compatible storage.
// Works with Cloudflare R2, MinIO and AWS S3.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// New creates an ObjectStore from app config. When the bucket or
// credentials are missing it returns a disabled store rather than an
// error: running without object storage is a supported mode in which
// canvases keep their payloads inline.
func New(c *cfg.Config) (ObjectStore, error) {
	if c.S3Bucket == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
		return &disabledStore{}, nil
	}

	slog.Info("initializing object storage",
		"bucket", c.S3Bucket,
		"region", c.S3Region,
		"endpoint", c.S3Endpoint,
	)

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(c.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.S3AccessKey, c.S3SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if c.S3Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(c.S3Endpoint)
			o.UsePathStyle = true // Required for MinIO and some S3-compatible services
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	publicURL := c.S3PublicURL
	if publicURL == "" {
		if c.S3Endpoint != "" {
			publicURL = strings.TrimSuffix(c.S3Endpoint, "/") + "/" + c.S3Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.S3Bucket, c.S3Region)
		}
	}

	return &S3Store{
		client:    client,
		bucket:    c.S3Bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// IsConfigured reports that a real backend is available.
func (s *S3Store) IsConfigured() bool { return true }

// UploadImage stores image/video bytes and returns the public URL.
func (s *S3Store) UploadImage(ctx context.Context, data []byte, contentType, userID, canvasID, slotKey string) (string, error) {
	key := objectKey(userID, canvasID, slotKey, extForContentType(contentType))
	return s.put(ctx, key, data, contentType)
}

// UploadPDF stores PDF bytes and returns the public URL.
func (s *S3Store) UploadPDF(ctx context.Context, data []byte, userID, canvasID, slotKey string) (string, error) {
	key := objectKey(userID, canvasID, slotKey, ".pdf")
	return s.put(ctx, key, data, "application/pdf")
}

// Delete removes a file from the bucket.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

func (s *S3Store) put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return s.publicURL + "/" + key, nil
}

func objectKey(userID, canvasID, slotKey, ext string) string {
	return fmt.Sprintf("%s/%s/%s%s", userID, canvasID, slotKey, ext)
}

func extForContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/svg+xml":
		return ".svg"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "application/pdf":
		return ".pdf"
	default:
		return ".bin"
	}
}

// disabledStore is the no-backend mode: IsConfigured is false and every
// upload fails with ErrNotConfigured.
type disabledStore struct{}

func (d *disabledStore) IsConfigured() bool { return false }

func (d *disabledStore) UploadImage(ctx context.Context, data []byte, contentType, userID, canvasID, slotKey string) (string, error) {
	return "", ErrNotConfigured
}

func (d *disabledStore) UploadPDF(ctx context.Context, data []byte, userID, canvasID, slotKey string) (string, error) {
	return "", ErrNotConfigured
}

func (d *disabledStore) Delete(ctx context.Context, key string) error {
	return ErrNotConfigured
}
