package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/terragrow/storefront/config"
)

// r2Backend talks to Cloudflare R2 through its S3 compatible API.
type r2Backend struct {
	s3     *s3.Client
	bucket string
	domain string
}

func newR2(ctx context.Context, cfg config.StorageConfig) (*r2Backend, error) {
	if cfg.R2Bucket == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2Endpoint == "" {
		return nil, fmt.Errorf("missing R2 settings (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, ""),
		),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.R2Endpoint)
		o.UsePathStyle = true
	})
	return &r2Backend{
		s3:     client,
		bucket: cfg.R2Bucket,
		domain: strings.TrimRight(cfg.R2PublicDomain, "/"),
	}, nil
}

func (r *r2Backend) put(ctx context.Context, objectName, contentType string, fh *multipart.FileHeader) error {
	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	_, err = r.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(objectName),
		Body:          f,
		ContentLength: aws.Int64(fh.Size),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("no-cache"),
	})
	return err
}

func (r *r2Backend) remove(ctx context.Context, objectName string) error {
	_, err := r.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectName),
	})
	return err
}

func (r *r2Backend) publicURL(objectName string) string {
	return fmt.Sprintf("%s/%s/%s", r.domain, r.bucket, objectName)
}

func (r *r2Backend) objectName(raw string) (string, error) {
	return r2ObjectName(r.domain, r.bucket, raw)
}

// r2ObjectName understands URLs built by publicURL as well as r2.dev style
// https://<host>/<object> links.
func r2ObjectName(domain, bucket, raw string) (string, error) {
	if domain != "" && strings.HasPrefix(raw, domain+"/"+bucket+"/") {
		return strings.TrimPrefix(raw, domain+"/"+bucket+"/"), nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("not a recognised R2 public url")
	}
	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		return "", fmt.Errorf("no object path in url")
	}
	return path, nil
}
