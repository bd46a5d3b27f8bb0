package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"

	"github.com/skriptik666-dev/flick-messenger/internal/config"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
)

// ErrNotConfigured is returned when the endpoint or credential is missing
// or still set to a placeholder.
var ErrNotConfigured = errors.New("object storage not configured")

// sniffLen is how much of a body is read to detect its content type.
const sniffLen = 3072

// UploaderAPI defines the upload operation we use.
type UploaderAPI interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Store uploads attachments to an S3-compatible bucket.
type S3Store struct {
	Uploader UploaderAPI
	Bucket   string
	BaseURL  string
}

// NewS3Store configures an uploader for cfg. It fails with
// ErrNotConfigured before touching the network when cfg is incomplete.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	if !Configured(cfg) {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3Store{
		Uploader: uploader,
		Bucket:   cfg.Bucket,
		BaseURL:  PublicBaseURL(cfg),
	}, nil
}

// Save uploads the file under a freshly generated key and returns its
// public URL.
func (s *S3Store) Save(ctx context.Context, up models.Upload) (string, error) {
	if up.Body == nil {
		return "", fmt.Errorf("s3 storage: empty body")
	}
	body, contentType, err := Sniff(up.Body, up.ContentType)
	if err != nil {
		return "", fmt.Errorf("s3 storage: read %s: %w", up.Name, err)
	}

	key := ObjectKey(up.Name)
	_, err = s.Uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 storage upload %s: %w", key, err)
	}
	return s.BaseURL + "/" + key, nil
}

// Sniff returns a reader equivalent to r together with its content type.
// A declared type wins; otherwise the first bytes are inspected.
func Sniff(r io.Reader, declared string) (io.Reader, string, error) {
	if declared != "" {
		return r, declared, nil
	}
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", err
	}
	head = head[:n]
	return io.MultiReader(bytes.NewReader(head), r), mimetype.Detect(head).String(), nil
}

// PublicBaseURL is where uploaded objects can be fetched from.
func PublicBaseURL(cfg config.StorageConfig) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(cfg.PublicBaseURL, "/")
	}
	return strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
}

var placeholders = map[string]bool{
	"":                       true,
	"your-storage-endpoint":  true,
	"your-access-key":        true,
	"your-anon-key":          true,
	"your_supabase_url":      true,
	"your_supabase_anon_key": true,
	"changeme":               true,
}

// Configured reports whether cfg carries a real endpoint and credential.
func Configured(cfg config.StorageConfig) bool {
	return !isPlaceholder(cfg.Endpoint) && !isPlaceholder(cfg.AccessKeyID)
}

func isPlaceholder(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return placeholders[v] || strings.HasPrefix(v, "your-") || strings.HasPrefix(v, "your_")
}
