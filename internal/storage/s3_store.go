package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// S3API is the subset of the S3 client used by the store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Store implements BlobStore on an S3 bucket.
type s3Store struct {
	client S3API
	bucket string
	prefix string
	logger zerolog.Logger
}

// NewS3Store creates an S3-backed blob store using the default AWS credential chain.
func NewS3Store(ctx context.Context, bucket, region, prefix string, logger zerolog.Logger) (BlobStore, error) {
	logger = logger.With().Str("component", "s3-blob-store").Logger()

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	logger.Info().
		Str("bucket", bucket).
		Str("region", region).
		Msg("S3 blob store initialised")

	return NewS3StoreWithClient(s3.NewFromConfig(cfg), bucket, prefix, logger), nil
}

// NewS3StoreWithClient creates an S3-backed blob store around an existing client.
func NewS3StoreWithClient(client S3API, bucket, prefix string, logger zerolog.Logger) BlobStore {
	return &s3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
		logger: logger,
	}
}

func (s *s3Store) key(key string) string {
	return s.prefix + key + ".json"
}

// Get downloads the object for key.
func (s *s3Store) Get(ctx context.Context, key string) ([]byte, error) {
	objectKey := s.key(key)

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			s.logger.Debug().Str("key", objectKey).Msg("blob not found in S3")
			return nil, ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", objectKey).
			Msg("failed to get object from S3")
		return nil, fmt.Errorf("failed to get object from S3 (bucket=%s, key=%s): %w", s.bucket, objectKey, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object %s: %w", objectKey, err)
	}

	return data, nil
}

// Put uploads the blob for key.
func (s *s3Store) Put(ctx context.Context, key string, data []byte) error {
	objectKey := s.key(key)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", objectKey).
			Msg("failed to put object to S3")
		return fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, objectKey, err)
	}

	s.logger.Debug().Str("key", objectKey).Int("bytes", len(data)).Msg("blob uploaded to S3")
	return nil
}

// fallbackStore reads from the primary store first and falls back to the
// secondary one; writes go to both so the local copy stays warm.
type fallbackStore struct {
	primary   BlobStore
	secondary BlobStore
	logger    zerolog.Logger
}

// NewFallbackStore creates a store that prefers primary and falls back to secondary.
func NewFallbackStore(primary, secondary BlobStore, logger zerolog.Logger) BlobStore {
	return &fallbackStore{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With().Str("component", "fallback-blob-store").Logger(),
	}
}

// Get tries the primary store, then the secondary one.
func (s *fallbackStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.primary.Get(ctx, key)
	if err == nil {
		return data, nil
	}

	s.logger.Warn().
		Err(err).
		Str("key", key).
		Msg("primary blob store failed, falling back to secondary")

	return s.secondary.Get(ctx, key)
}

// Put writes to the primary store and mirrors to the secondary. Only a
// primary failure is reported.
func (s *fallbackStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.primary.Put(ctx, key, data); err != nil {
		return err
	}

	if err := s.secondary.Put(ctx, key, data); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("failed to mirror blob to secondary store")
	}

	return nil
}
