package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	"sharehub/core"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/oklog/ulid/v2"
)

// Config carries the connection settings for an S3-compatible endpoint.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type minioStore struct {
	client *minio.Client
	bucket string
}

// NewStore creates a content store backed by an S3-compatible server
// (MinIO, Ceph, etc). The bucket is created when missing.
func NewStore(cfg Config) core.ContentStore {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		log.Fatalf("failed to create minio client: %v", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		log.Fatalf("failed to check bucket %s: %v", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			log.Fatalf("failed to create bucket %s: %v", cfg.Bucket, err)
		}
	}

	return &minioStore{client: client, bucket: cfg.Bucket}
}

func (s *minioStore) Put(ctx context.Context, data []byte) (string, error) {
	id := ulid.Make().String()

	_, err := s.client.PutObject(ctx, s.bucket, id, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload content: %v", err)
	}
	return id, nil
}

func (s *minioStore) Get(ctx context.Context, id string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, id, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get content %s: %v", id, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("content %s: %w", id, core.ErrContentNotFound)
		}
		return nil, fmt.Errorf("failed to read content %s: %v", id, err)
	}
	return data, nil
}

func (s *minioStore) Delete(ctx context.Context, id string) error {
	// RemoveObject follows S3 semantics: deleting a missing key succeeds,
	// which the sweep treats the same as NotFound.
	if err := s.client.RemoveObject(ctx, s.bucket, id, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete content %s: %v", id, err)
	}
	return nil
}
