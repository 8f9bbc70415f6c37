// Package blobstore wraps MinIO access for the processing pipeline.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dharsanguruparan/docmill/internal/config"
)

// Store downloads raw document bytes by their storage path.
type Store struct {
	client *minio.Client
}

// New creates a MinIO client from the Config.
func New(cfg *config.Config) (*Store, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Store{client: client}, nil
}

// Download fetches the object stored at objectPath, which has the form
// "<bucket>/<object>". Malformed paths fail before any network call.
func (s *Store) Download(ctx context.Context, objectPath string) ([]byte, error) {
	bucket, object, err := splitPath(objectPath)
	if err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", objectPath, err)
	}
	defer obj.Close()
	// GetObject is lazy; missing objects surface here.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", objectPath, err)
	}
	return data, nil
}

func splitPath(objectPath string) (bucket, object string, err error) {
	bucket, object, ok := strings.Cut(objectPath, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("malformed storage path %q: want <bucket>/<object>", objectPath)
	}
	return bucket, object, nil
}
