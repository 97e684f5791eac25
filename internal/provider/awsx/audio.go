package awsx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/metric"
)

// DefaultURLExpiry is how long a presigned audio URL stays valid.
const DefaultURLExpiry = time.Hour

const providerS3 = "s3"

// AudioStore uploads synthesized speech to S3 and returns a presigned GET URL.
type AudioStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
	metrics *metric.Registry
}

// AudioStoreOption configures an AudioStore.
type AudioStoreOption func(*AudioStore)

// WithURLExpiry sets the presigned URL lifetime.
func WithURLExpiry(d time.Duration) AudioStoreOption {
	return func(s *AudioStore) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithAudioMetrics records upload latency.
func WithAudioMetrics(m *metric.Registry) AudioStoreOption {
	return func(s *AudioStore) { s.metrics = m }
}

// NewAudioStore creates an AudioStore writing to bucket.
func NewAudioStore(cfg Config, bucket string, opts ...AudioStoreOption) (*AudioStore, error) {
	if bucket == "" {
		return nil, errors.New("awsx: bucket is required")
	}
	client := s3.NewFromConfig(cfg.awsConfig(), func(o *s3.Options) {
		// Custom endpoints rarely support virtual-hosted buckets.
		o.UsePathStyle = cfg.Endpoint != ""
	})
	s := &AudioStore{
		client: client,
		bucket: bucket,
		expiry: DefaultURLExpiry,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.presign = s3.NewPresignClient(client, s3.WithPresignExpires(s.expiry))
	return s, nil
}

// Put implements service.AudioStore.
func (s *AudioStore) Put(ctx context.Context, key string, audio *domain.Audio) (url string, err error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveUpstream(providerS3, err, time.Since(start))
		}
	}()

	if audio == nil || len(audio.Data) == 0 {
		return "", errors.New("awsx: empty audio")
	}
	contentType := audio.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(audio.Data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(audio.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("awsx: put %s: %w", key, err)
	}
	return s.PresignGet(ctx, key)
}

// PresignGet returns a time-limited download URL for key.
func (s *AudioStore) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("awsx: presign %s: %w", key, err)
	}
	return req.URL, nil
}
