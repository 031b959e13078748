package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/codecoach/client/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minioBackend talks to MinIO or any other S3-compatible endpoint reachable
// with static keys, which is what development/docker-compose.yml runs.
type minioBackend struct {
	client *minio.Client
	bucket string
}

func newMinioBackend(cfg config.MinioConfig) (*minioBackend, error) {
	switch {
	case strings.TrimSpace(cfg.Endpoint) == "":
		return nil, errors.New("minio endpoint is required")
	case strings.TrimSpace(cfg.AccessKey) == "", strings.TrimSpace(cfg.SecretKey) == "":
		return nil, errors.New("minio access key and secret key are required")
	case strings.TrimSpace(cfg.Bucket) == "":
		return nil, errors.New("minio bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client for %s: %w", cfg.Endpoint, err)
	}
	return &minioBackend{client: client, bucket: cfg.Bucket}, nil
}

func (b *minioBackend) EnsureBucket(ctx context.Context) error {
	found, err := b.client.BucketExists(ctx, b.bucket)
	switch {
	case err != nil:
		return err
	case found:
		return nil
	}
	err = b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{})
	if resp := minio.ToErrorResponse(err); resp.Code == "BucketAlreadyOwnedByYou" {
		return nil
	}
	return err
}

func (b *minioBackend) Put(ctx context.Context, obj Object) error {
	_, err := b.client.PutObject(ctx, b.bucket, obj.Key, obj.Body, obj.Size, minio.PutObjectOptions{
		ContentType:  obj.ContentType,
		UserMetadata: obj.Metadata,
	})
	return err
}

// Get stats first; GetObject is lazy and a missing key would only surface
// on the first Read.
func (b *minioBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if _, err := b.client.StatObject(ctx, b.bucket, key, minio.StatObjectOptions{}); err != nil {
		return nil, minioNotFound(err)
	}
	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, minioNotFound(err)
	}
	return obj, nil
}

func (b *minioBackend) Delete(ctx context.Context, key string) error {
	return minioNotFound(b.client.RemoveObject(ctx, b.bucket, key, minio.RemoveObjectOptions{}))
}

func (b *minioBackend) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for obj := range b.client.ListObjects(ctx, b.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		out = append(out, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return out, nil
}

func (b *minioBackend) Bucket() string {
	return b.bucket
}

func minioNotFound(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return ErrObjectNotFound
	}
	return err
}
