package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/watchengine/watch-engine-backend/pkg/config"
	pkgerrors "github.com/watchengine/watch-engine-backend/pkg/errors"
	"github.com/watchengine/watch-engine-backend/pkg/logger"
)

const pingTimeout = 5 * time.Second

// objectAPI is the subset of *minio.Client used here.
type objectAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// Uploader stores profile images and returns their public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(raw string) (string, bool)
}

type Client struct {
	api        objectAPI
	bucket     string
	region     string
	publicBase string
	logg       *logger.Logger
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func NewClient(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, errors.New("storage endpoint is required")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage bucket name is required")
	}

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	client := newClient(api, cfg, logg)
	if err := client.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("storage bucket check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.Bucket), "storage client initialized")
	}
	return client, nil
}

func newClient(api objectAPI, cfg config.StorageConfig, logg *logger.Logger) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket)
	}
	return &Client{
		api:        api,
		bucket:     cfg.Bucket,
		region:     cfg.Region,
		publicBase: base,
		logg:       logg,
	}
}

// EnsureBucket creates the configured bucket when it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
		// another instance may have created it in between
		if again, checkErr := c.api.BucketExists(ctx, c.bucket); checkErr == nil && again {
			return nil
		}
		return err
	}
	if c.logg != nil {
		c.logg.Info(c.logg.WithField(ctx, "bucket", c.bucket), "storage bucket created")
	}
	return nil
}

func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.api == nil {
		return errors.New("storage client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	exists, err := c.api.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("storage bucket %q missing", c.bucket)
	}
	return nil
}

func (c *Client) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "object key is required")
	}
	if body == nil || size <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image file is empty")
	}

	if _, err := c.api.PutObject(ctx, c.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to store image")
	}
	return c.PublicURL(key), nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return nil
	}
	if err := c.api.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to delete image")
	}
	return nil
}

// PublicURL joins the public base with an escaped object key.
func (c *Client) PublicURL(key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return c.publicBase + "/" + strings.Join(segments, "/")
}

// KeyFromURL reverses PublicURL; ok is false for URLs outside this bucket.
func (c *Client) KeyFromURL(raw string) (string, bool) {
	prefix := c.publicBase + "/"
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimPrefix(raw, prefix))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}
