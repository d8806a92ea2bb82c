// Package storage keeps brand assets in S3-compatible object storage.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PresignedURLTTL is how long a logo link stays valid.
const PresignedURLTTL = 24 * time.Hour

// logoTypes are the image types accepted as a brand logo.
var logoTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// Config defines the configuration interface for storage.
type Config interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketBranding() string
	IsMinIOEnabled() bool
}

// Object is a downloaded asset.
type Object struct {
	Data        []byte
	ContentType string
}

// BrandStore stores and serves brand assets from one bucket.
type BrandStore struct {
	client      *minio.Client
	bucket      string
	maxFileSize int64
}

// NewBrandStore connects to MinIO. It fails when MinIO is not configured.
func NewBrandStore(cfg Config) (*BrandStore, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}
	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &BrandStore{
		client:      client,
		bucket:      cfg.GetMinioBucketBranding(),
		maxFileSize: cfg.GetMinIOMaxFileSize(),
	}, nil
}

// EnsureBucket creates the branding bucket if it doesn't exist.
func (s *BrandStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
		}
	}
	return nil
}

// PutLogo uploads a logo and returns its object key.
func (s *BrandStore) PutLogo(ctx context.Context, contentType string, data []byte) (string, error) {
	ext, err := ValidateLogo(contentType, int64(len(data)), s.maxFileSize)
	if err != nil {
		return "", err
	}
	key := path.Join("logos", uuid.NewString()+ext)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: NormalizeContentType(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload logo %s: %w", key, err)
	}
	return key, nil
}

// Get downloads an object into memory.
func (s *BrandStore) Get(ctx context.Context, key string) (Object, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return Object{}, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer func() { _ = obj.Close() }()

	info, err := obj.Stat()
	if err != nil {
		return Object{}, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	data, err := io.ReadAll(io.LimitReader(obj, s.maxFileSize+1))
	if err != nil {
		return Object{}, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return Object{Data: data, ContentType: info.ContentType}, nil
}

// Delete removes an object. Missing objects are not an error.
func (s *BrandStore) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// PresignedURL returns a time-limited download link.
func (s *BrandStore) PresignedURL(ctx context.Context, key string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, PresignedURLTTL, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return u.String(), nil
}

// NormalizeContentType strips parameters and lowercases.
func NormalizeContentType(contentType string) string {
	return strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
}

// ValidateLogo checks type and size and returns the file extension to use.
func ValidateLogo(contentType string, size, maxSize int64) (string, error) {
	ext, ok := logoTypes[NormalizeContentType(contentType)]
	if !ok {
		return "", fmt.Errorf("content type %q is not allowed for a logo", contentType)
	}
	if size <= 0 {
		return "", fmt.Errorf("file size must be greater than 0")
	}
	if maxSize > 0 && size > maxSize {
		return "", fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", size, maxSize)
	}
	return ext, nil
}
