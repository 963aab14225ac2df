// Package storage provides the object storage client used for generated
// content blobs (presentations, audio narration, avatar videos).
//
// Generated blobs live in two buckets: the content bucket for
// presentations and audio files, and the video bucket for avatar videos.
// Public URLs follow the gateway convention
// <base>/storage/v1/object/public/<bucket>/<object_path>;
// ExtractStoragePath reverses that convention when a stored URL must be
// mapped back to a deletable object.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/educoreai-lotus/content-studio/internal/config"
	"github.com/educoreai-lotus/content-studio/internal/domain"
	"github.com/educoreai-lotus/content-studio/internal/observability"
)

// publicURLMarker separates the gateway prefix from the bucket and object
// path in public storage URLs.
const publicURLMarker = "/storage/v1/object/public/"

// ObjectStore is the interface consumed by the persistence and cleanup
// layers. Implementations must be safe for concurrent use.
type ObjectStore interface {
	// IsConfigured reports whether a storage backend is available. All
	// other methods return domain.ErrStorageNotConfigured when it is not.
	IsConfigured() bool

	// DeleteFile removes an object from the content bucket.
	DeleteFile(ctx context.Context, objectPath string) error

	// DeleteVideo removes an object from the video bucket.
	DeleteVideo(ctx context.Context, objectPath string) error

	// Delete removes an object from an explicitly named bucket.
	Delete(ctx context.Context, bucket, objectPath string) error
}

// Client is a minio-backed implementation of ObjectStore.
type Client struct {
	client  *minio.Client
	cfg     config.StorageConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// Compile-time interface check.
var _ ObjectStore = (*Client)(nil)

// NewClient creates a storage client from configuration. When storage is
// disabled the returned client is non-nil but reports IsConfigured false,
// so callers can degrade instead of branching on nil.
func NewClient(cfg config.StorageConfig, logger zerolog.Logger, metrics *observability.Metrics) (*Client, error) {
	c := &Client{
		cfg:     cfg,
		logger:  logger.With().Str("component", "storage").Logger(),
		metrics: metrics,
	}
	if !cfg.Enabled {
		c.logger.Info().Msg("Object storage disabled, blob operations will be skipped")
		return c, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}
	c.client = client

	c.logger.Info().
		Str("endpoint", cfg.Endpoint).
		Str("bucket", cfg.Bucket).
		Str("video_bucket", cfg.VideoBucket).
		Msg("Object storage client created")
	return c, nil
}

// EnsureBuckets creates the content and video buckets if they do not
// exist. Called once at startup.
func (c *Client) EnsureBuckets(ctx context.Context) error {
	if !c.IsConfigured() {
		return nil
	}
	for _, bucket := range []string{c.cfg.Bucket, c.cfg.VideoBucket} {
		exists, err := c.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("checking bucket %s: %w", bucket, err)
		}
		if exists {
			continue
		}
		if err := c.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket %s: %w", bucket, err)
		}
		c.logger.Info().Str("bucket", bucket).Msg("Created storage bucket")
	}
	return nil
}

// IsConfigured reports whether a storage backend is available.
func (c *Client) IsConfigured() bool {
	return c != nil && c.client != nil
}

// DeleteFile removes an object from the content bucket.
func (c *Client) DeleteFile(ctx context.Context, objectPath string) error {
	return c.Delete(ctx, c.cfg.Bucket, objectPath)
}

// DeleteVideo removes an object from the video bucket.
func (c *Client) DeleteVideo(ctx context.Context, objectPath string) error {
	return c.Delete(ctx, c.cfg.VideoBucket, objectPath)
}

// Delete removes an object from an explicitly named bucket.
func (c *Client) Delete(ctx context.Context, bucket, objectPath string) error {
	if !c.IsConfigured() {
		return domain.ErrStorageNotConfigured
	}
	if objectPath == "" {
		return fmt.Errorf("%w: object path is empty", domain.ErrInvalidInput)
	}

	start := time.Now()
	err := c.client.RemoveObject(ctx, bucket, objectPath, minio.RemoveObjectOptions{})
	c.observe("delete", bucket, start, err)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", bucket, objectPath, err)
	}
	return nil
}

func (c *Client) observe(operation, bucket string, start time.Time, err error) {
	if c.metrics != nil {
		c.metrics.RecordStorageRequest(operation, bucket, time.Since(start).Seconds())
		if err != nil {
			c.metrics.RecordStorageRequestFailed(operation, bucket)
		}
	}
}

// ExtractStoragePath parses a public storage URL into its bucket and
// object path. It returns ok false for URLs that do not follow the public
// URL convention, including external URLs that must not be deleted.
func ExtractStoragePath(url string) (bucket, objectPath string, ok bool) {
	idx := strings.Index(url, publicURLMarker)
	if idx < 0 {
		return "", "", false
	}
	rest := url[idx+len(publicURLMarker):]
	slash := strings.Index(rest, "/")
	if slash <= 0 || slash == len(rest)-1 {
		return "", "", false
	}
	return rest[:slash], rest[slash+1:], true
}
