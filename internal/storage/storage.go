package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	appconfig "github.com/spedigo-next/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrStorageDisabled = errors.New("document storage disabled")

// DocumentStore keeps customs documents long-term and returns the public URL
// the order metafield is written from.
type DocumentStore interface {
	Enabled() bool
	Put(ctx context.Context, name string, body []byte) (string, error)
}

// S3Store stores documents in an S3 bucket.
type S3Store struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	publicURL string
	enabled   bool
}

// NewS3Store builds the store. A disabled store is valid: Put returns
// ErrStorageDisabled and the caller records the document as carrier-only.
func NewS3Store(ctx context.Context, cfg appconfig.StorageConfig) (*S3Store, error) {
	store := &S3Store{
		bucket:    strings.TrimSpace(cfg.Bucket),
		keyPrefix: strings.Trim(strings.TrimSpace(cfg.KeyPrefix), "/"),
		publicURL: strings.TrimRight(strings.TrimSpace(cfg.PublicURL), "/"),
		enabled:   cfg.Enabled,
	}
	if !cfg.Enabled {
		return store, nil
	}
	if store.bucket == "" {
		return nil, fmt.Errorf("storage enabled but bucket missing")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	store.client = s3.NewFromConfig(awsCfg)
	return store, nil
}

// Enabled reports whether documents are persisted at all.
func (s *S3Store) Enabled() bool {
	return s.enabled
}

// Put uploads one document and returns its public URL.
func (s *S3Store) Put(ctx context.Context, name string, body []byte) (string, error) {
	if !s.enabled {
		return "", ErrStorageDisabled
	}
	key := name
	if s.keyPrefix != "" {
		key = s.keyPrefix + "/" + name
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	if s.publicURL != "" {
		return s.publicURL + "/" + key, nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.bucket, key), nil
}
