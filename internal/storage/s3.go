package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// ObjectStore removes uploaded objects when their owning rows go away.
// The S3 implementation backs post images; tests and unconfigured
// deployments use Noop.
type ObjectStore interface {
	DeleteObject(ctx context.Context, key string) error
}

// S3Store deletes objects from a fixed bucket.
type S3Store struct {
	bucket string
	client *s3.S3
}

// NewS3Store creates an S3-backed store for the given region and bucket.
func NewS3Store(region, bucket string) (*S3Store, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &S3Store{
		bucket: bucket,
		client: s3.New(sess),
	}, nil
}

// DeleteObject implements ObjectStore.
func (s *S3Store) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3 object %s: %w", key, err)
	}
	return nil
}

// Noop is used when no bucket is configured.
type Noop struct{}

// DeleteObject implements ObjectStore as a no-op.
func (Noop) DeleteObject(ctx context.Context, key string) error {
	return nil
}
