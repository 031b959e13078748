package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/codecoach/client/config"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// gcsBackend keeps reports in a Google Cloud Storage bucket. Credentials
// default to the application default chain.
type gcsBackend struct {
	client    *storage.Client
	bucket    *storage.BucketHandle
	name      string
	projectID string
}

func newGCSBackend(ctx context.Context, cfg config.GCSConfig) (*gcsBackend, error) {
	name := strings.TrimSpace(cfg.Bucket)
	if name == "" {
		return nil, errors.New("gcs bucket is required")
	}

	var opts []option.ClientOption
	if file := strings.TrimSpace(cfg.CredentialsFile); file != "" {
		opts = append(opts, option.WithCredentialsFile(file))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}

	return &gcsBackend{
		client:    client,
		bucket:    client.Bucket(name),
		name:      name,
		projectID: strings.TrimSpace(cfg.ProjectID),
	}, nil
}

// EnsureBucket needs GCS_PROJECT_ID only when the bucket has to be created.
func (b *gcsBackend) EnsureBucket(ctx context.Context) error {
	_, err := b.bucket.Attrs(ctx)
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return err
	}
	if b.projectID == "" {
		return fmt.Errorf("bucket %s does not exist and no gcs project id is set to create it", b.name)
	}
	return b.bucket.Create(ctx, b.projectID, nil)
}

func (b *gcsBackend) Put(ctx context.Context, obj Object) error {
	w := b.bucket.Object(obj.Key).NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.Metadata = obj.Metadata
	if _, err := io.Copy(w, obj.Body); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (b *gcsBackend) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := b.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return nil, gcsNotFound(err)
	}
	return r, nil
}

func (b *gcsBackend) Delete(ctx context.Context, key string) error {
	return gcsNotFound(b.bucket.Object(key).Delete(ctx))
}

func (b *gcsBackend) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	it := b.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	var out []ObjectInfo
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ObjectInfo{Key: attrs.Name, Size: attrs.Size, LastModified: attrs.Updated})
	}
}

func (b *gcsBackend) Bucket() string {
	return b.name
}

func gcsNotFound(err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return ErrObjectNotFound
	}
	return err
}
