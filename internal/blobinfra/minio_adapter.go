// Package blobinfra provides the MinIO-backed blob store used by the upload
// saga. Objects are addressed by a generated id under a per-owner folder and
// exposed through a base URL, so records never depend on bucket internals.
package blobinfra

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jmgilman/go/errors"

	"github.com/goliatone/go-photo-vault/vault"
)

// Config holds the connection settings for the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	BaseURL   string
	UseSSL    bool
}

// Validate checks the configuration and returns an error if invalid.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return &ConfigError{Field: "Endpoint", Message: "must not be empty"}
	}
	if c.Bucket == "" {
		return &ConfigError{Field: "Bucket", Message: "must not be empty"}
	}
	if c.BaseURL == "" {
		return &ConfigError{Field: "BaseURL", Message: "must not be empty"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("blob config error: field %s %s", e.Field, e.Message)
}

// MinioStore implements vault.BlobStore on a MinIO bucket.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore connects to the object store and ensures the bucket exists.
func NewMinioStore(ctx context.Context, config Config) (*MinioStore, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNetwork, "blob store connection failed")
	}

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeNetwork, "blob store bucket check failed")
	}
	if !exists {
		if err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, errors.Wrapf(err, errors.CodeNetwork, "blob store bucket %q cannot be created", config.Bucket)
		}
	}

	return &MinioStore{
		client:  client,
		bucket:  config.Bucket,
		baseURL: strings.TrimSuffix(config.BaseURL, "/"),
	}, nil
}

// Upload writes data under folder and returns the object's reference. The
// content type is sniffed from the payload.
func (s *MinioStore) Upload(ctx context.Context, data []byte, folder string) (vault.BlobRef, error) {
	id := path.Join(folder, uuid.NewString())
	contentType := http.DetectContentType(data)

	_, err := s.client.PutObject(ctx, s.bucket, id, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return vault.BlobRef{}, errors.Wrap(err, errors.CodeNetwork, "blob upload failed")
	}

	return vault.BlobRef{
		ID:  id,
		URL: s.baseURL + "/" + id,
	}, nil
}

// Delete removes the object identified by id.
func (s *MinioStore) Delete(ctx context.Context, id string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrapf(err, errors.CodeNetwork, "blob %s cannot be deleted", id)
	}
	return nil
}
