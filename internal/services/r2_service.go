package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/GabKongroo/NothingSpecial/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/logging"
)

// R2Service talks to Cloudflare R2 through its S3 compatible API.
type R2Service struct {
	client   *s3.Client
	uploader *manager.Uploader
	cfg      *config.Config
}

func NewR2Service(cfg *config.Config) (*R2Service, error) {
	endpoint := cfg.R2EndpointURL()
	if endpoint == "" {
		return nil, errors.New("r2 endpoint not configured")
	}
	client, err := buildClient(endpoint, "auto", cfg.R2AccessKeyID, cfg.R2SecretAccessKey, true)
	if err != nil {
		return nil, err
	}
	return &R2Service{
		client:   client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) { u.PartSize = 10 * 1024 * 1024 }),
		cfg:      cfg,
	}, nil
}

func buildClient(endpoint, region, key, secret string, pathStyle bool) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		awsconfig.WithLogger(logging.Nop{}),
	)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = pathStyle
		o.BaseEndpoint = aws.String(endpoint)
	})
	return client, nil
}

// Exists reports whether key is present in bucket.
func (s *R2Service) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &bucket, Key: &key})
	if err == nil {
		return true, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey":
			return false, nil
		}
	}
	return false, err
}

func (s *R2Service) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *R2Service) Delete(ctx context.Context, bucket, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &bucket, Key: &key})
	return err
}

// Ping checks that both configured buckets are reachable.
func (s *R2Service) Ping(ctx context.Context) error {
	for _, bucket := range []string{s.cfg.R2PrivateBucket, s.cfg.R2PublicBucket} {
		b := bucket
		if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: &b}); err != nil {
			return fmt.Errorf("bucket %s: %w", bucket, err)
		}
	}
	return nil
}

// PublicBucket is where previews, covers and bundle images live.
func (s *R2Service) PublicBucket() string { return s.cfg.R2PublicBucket }

// PublicObjectURL returns the CDN address of a public object, or "" when no
// public base URL is configured.
func PublicObjectURL(base, key string) string {
	if base == "" || key == "" {
		return ""
	}
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(parts, "/")
}
