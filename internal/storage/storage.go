package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/codecoach/client/config"
	"github.com/google/uuid"
)

const (
	reportPrefix      = "reports"
	reportContentType = "application/json"

	metaProblemID = "problem-id"
	metaEntryID   = "entry-id"
)

// ErrObjectNotFound is returned by Get and Fetch when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// Object is one upload. Metadata keys are sent as user metadata and must be
// lower-case ASCII.
type Object struct {
	Key         string
	Body        io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage is what a bucket backend has to offer the report archive.
type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, obj Object) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Bucket() string
}

// Storage is the report archive: full evaluation and analysis replies kept
// under reports/<problem>/<entry>.json.
type Storage struct {
	backend ObjectStorage
}

func NewStorage(backend ObjectStorage) *Storage {
	return &Storage{backend: backend}
}

// Open builds the backend selected by cfg.StorageBackend and makes sure its
// bucket exists. It returns nil, nil when no archive is configured.
func Open(ctx context.Context, cfg config.JournalConfig) (*Storage, error) {
	backend, err := openBackend(ctx, cfg)
	if err != nil || backend == nil {
		return nil, err
	}
	if err := backend.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket %s: %w", backend.Bucket(), err)
	}
	return NewStorage(backend), nil
}

func openBackend(ctx context.Context, cfg config.JournalConfig) (ObjectStorage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.StorageBackend)) {
	case "", "none":
		return nil, nil
	case "minio":
		return newMinioBackend(cfg.Minio)
	case "gcs":
		return newGCSBackend(ctx, cfg.GCS)
	case "s3":
		return newS3Backend(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func problemSegment(problemID string) string {
	problem := url.PathEscape(strings.TrimSpace(problemID))
	if problem == "" {
		return "_"
	}
	return problem
}

// ReportKey returns the object key of an entry's report.
func ReportKey(problemID string, id uuid.UUID) string {
	return fmt.Sprintf("%s/%s/%s.json", reportPrefix, problemSegment(problemID), id)
}

// Archive uploads a report and returns its key. The problem and entry ids
// travel along as object metadata.
func (s *Storage) Archive(ctx context.Context, problemID string, id uuid.UUID, report []byte) (string, error) {
	key := ReportKey(problemID, id)
	err := s.backend.Put(ctx, Object{
		Key:         key,
		Body:        bytes.NewReader(report),
		Size:        int64(len(report)),
		ContentType: reportContentType,
		Metadata: map[string]string{
			metaProblemID: problemID,
			metaEntryID:   id.String(),
		},
	})
	if err != nil {
		return "", err
	}
	return key, nil
}

// Fetch downloads the report stored under key.
func (s *Storage) Fetch(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.backend.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Reports lists archived reports, newest first. An empty problemID lists
// every problem.
func (s *Storage) Reports(ctx context.Context, problemID string) ([]ObjectInfo, error) {
	prefix := reportPrefix + "/"
	if strings.TrimSpace(problemID) != "" {
		prefix += problemSegment(problemID) + "/"
	}
	objects, err := s.backend.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})
	return objects, nil
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	err := s.backend.Delete(ctx, key)
	if errors.Is(err, ErrObjectNotFound) {
		return nil
	}
	return err
}

func (s *Storage) Bucket() string {
	return s.backend.Bucket()
}
