package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/terragrow/storefront/config"
)

type gcsBackend struct {
	client *gcs.Client
	bucket string
}

func newGCS(ctx context.Context, cfg config.StorageConfig) (*gcsBackend, error) {
	if cfg.GCSBucket == "" {
		return nil, fmt.Errorf("GCS_BUCKET is required for the gcs driver")
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		path := cfg.CredentialsFile
		if !filepath.IsAbs(path) {
			wd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(wd, path)
		}
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, path))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	return &gcsBackend{client: client, bucket: cfg.GCSBucket}, nil
}

func (g *gcsBackend) put(ctx context.Context, objectName, contentType string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	w := g.client.Bucket(g.bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "no-cache"

	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload close: %w", err)
	}
	return nil
}

func (g *gcsBackend) remove(ctx context.Context, objectName string) error {
	return g.client.Bucket(g.bucket).Object(objectName).Delete(ctx)
}

func (g *gcsBackend) publicURL(objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, objectName)
}

func (g *gcsBackend) objectName(raw string) (string, error) {
	return gcsObjectName(g.bucket, raw)
}

// gcsObjectName accepts both storage.googleapis.com/<bucket>/<object> and
// <bucket>.storage.googleapis.com/<object>.
func gcsObjectName(bucket, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	host := strings.ToLower(u.Host)
	path := strings.TrimPrefix(u.Path, "/")

	if host == "storage.googleapis.com" {
		prefix := bucket + "/"
		if !strings.HasPrefix(path, prefix) {
			return "", fmt.Errorf("url bucket mismatch")
		}
		return strings.TrimPrefix(path, prefix), nil
	}
	if host == strings.ToLower(bucket)+".storage.googleapis.com" {
		if path == "" {
			return "", fmt.Errorf("missing object path")
		}
		return path, nil
	}
	return "", fmt.Errorf("not a gcs public url")
}
