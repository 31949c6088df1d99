package storage

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/terragrow/storefront/apperrors"
	"github.com/terragrow/storefront/config"
	"github.com/terragrow/storefront/models"
)

// Storage stores uploaded media and hands back public URLs.
type Storage interface {
	Upload(ctx context.Context, prefix string, fh *multipart.FileHeader) (*models.Attachment, error)
	Delete(ctx context.Context, objectNames ...string) error
	ObjectName(publicURL string) (string, error)
}

// backend is the provider specific part: GCS or R2.
type backend interface {
	put(ctx context.Context, objectName, contentType string, fh *multipart.FileHeader) error
	remove(ctx context.Context, objectName string) error
	publicURL(objectName string) string
	objectName(publicURL string) (string, error)
}

// Bucket validates files and delegates the transfer to a backend.
type Bucket struct {
	backend   backend
	validator *FileValidator
}

// New picks the backend named by STORAGE_DRIVER.
func New(ctx context.Context, cfg config.StorageConfig, upload config.UploadConfig) (Storage, error) {
	validator := NewFileValidator(upload)
	switch cfg.Driver {
	case config.StorageDriverGCS:
		b, err := newGCS(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Bucket{backend: b, validator: validator}, nil
	case config.StorageDriverR2:
		b, err := newR2(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Bucket{backend: b, validator: validator}, nil
	default:
		return Disabled{}, nil
	}
}

func (b *Bucket) Upload(ctx context.Context, prefix string, fh *multipart.FileHeader) (*models.Attachment, error) {
	detected, err := b.validator.ValidateFile(fh)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeValidation, err, err.Error()).
			WithDetails(map[string]any{"file": fh.Filename})
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	name := objectName(prefix, ext)
	ct := contentType(fh, ext, detected)

	if err := b.backend.put(ctx, name, ct, fh); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "upload failed")
	}

	return &models.Attachment{
		URL:        b.backend.publicURL(name),
		ObjectName: name,
		MimeType:   ct,
		SizeBytes:  fh.Size,
		FileName:   fh.Filename,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Delete removes every named object and reports all failures together.
func (b *Bucket) Delete(ctx context.Context, objectNames ...string) error {
	var errs error
	for _, name := range objectNames {
		if name == "" {
			continue
		}
		if err := b.backend.remove(ctx, name); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", name, err))
		}
	}
	return errs
}

func (b *Bucket) ObjectName(publicURL string) (string, error) {
	return b.backend.objectName(publicURL)
}

// UploadAll uploads files in order. When one fails, the ones already stored
// are removed again.
func UploadAll(ctx context.Context, s Storage, prefix string, files []*multipart.FileHeader) ([]*models.Attachment, error) {
	out := make([]*models.Attachment, 0, len(files))
	for _, fh := range files {
		att, err := s.Upload(ctx, prefix, fh)
		if err != nil {
			names := make([]string, 0, len(out))
			for _, done := range out {
				names = append(names, done.ObjectName)
			}
			return nil, multierr.Append(err, s.Delete(ctx, names...))
		}
		out = append(out, att)
	}
	return out, nil
}

func objectName(prefix, ext string) string {
	if ext == "" {
		ext = ".bin"
	}
	prefix = strings.Trim(prefix, "/")
	return fmt.Sprintf("%s/%d-%s%s", prefix, time.Now().UTC().Unix(), uuid.NewString(), ext)
}

func contentType(fh *multipart.FileHeader, ext, detected string) string {
	if detected != "" {
		return detected
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// Disabled rejects uploads when no storage driver is configured.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, *multipart.FileHeader) (*models.Attachment, error) {
	return nil, apperrors.New(apperrors.CodeDependency, "media storage is not configured")
}

func (Disabled) Delete(context.Context, ...string) error { return nil }

func (Disabled) ObjectName(string) (string, error) {
	return "", fmt.Errorf("media storage is not configured")
}
