package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ImageStore persists uploaded images and returns their public URL.
type ImageStore interface {
	PutImage(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client    objectPutter
	bucket    string
	publicURL string
}

// NewS3Store uses the default AWS credential chain (env, shared config,
// instance role).
func NewS3Store(ctx context.Context, bucket, publicURL string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)

	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	return &S3Store{
		client:    s3.NewFromConfig(cfg),
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

func (s *S3Store) PutImage(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
		Body:         body,
	})

	if err != nil {
		return "", fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return s.URL(key), nil
}

// URL prefers the configured public base (usually a CDN) over the bucket's
// own virtual-hosted address.
func (s *S3Store) URL(key string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key)
}
