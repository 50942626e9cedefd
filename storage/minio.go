// Package storage persists binary assets (audio files, cover images) in
// MinIO and hands back stable object references.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tunemart/config"
)

// Uploader is the file-storage collaborator consumed by the catalog service.
type Uploader interface {
	// Upload stores the payload under objectKey and returns the reference
	// used to address it later.
	Upload(ctx context.Context, r io.Reader, size int64, contentType, objectKey string) (string, error)
	// Remove deletes a stored object. Best effort; missing objects are not an error.
	Remove(ctx context.Context, objectKey string) error
	// Fetch opens a stored object for streaming. The caller closes it.
	Fetch(ctx context.Context, objectKey string) (io.ReadCloser, error)
}

// MinioStore implements Uploader on a MinIO bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore connects to MinIO and makes sure the bucket exists.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return nil, fmt.Errorf("failed to create bucket %s: %w", cfg.MinioBucket, err)
		}
	}

	return &MinioStore{client: client, bucket: cfg.MinioBucket}, nil
}

// Upload stores the payload and returns the object key as the reference.
func (s *MinioStore) Upload(ctx context.Context, r io.Reader, size int64, contentType, objectKey string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := s.client.PutObject(ctx, s.bucket, objectKey, r, size, opts); err != nil {
		return "", fmt.Errorf("failed to upload %s to MinIO: %w", objectKey, err)
	}
	return objectKey, nil
}

// Remove deletes a stored object.
func (s *MinioStore) Remove(ctx context.Context, objectKey string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s from MinIO: %w", objectKey, err)
	}
	return nil
}

// Fetch opens a stored object for streaming.
func (s *MinioStore) Fetch(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from MinIO: %w", objectKey, err)
	}
	return object, nil
}
