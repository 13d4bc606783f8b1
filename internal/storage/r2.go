package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrNotConfigured = errors.New("object storage not configured")

// R2Config is the connection info for a Cloudflare R2 (S3-compatible) bucket.
type R2Config struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

// R2ConfigFromEnv reads the R2_* variables. ErrNotConfigured when any is missing.
func R2ConfigFromEnv() (R2Config, error) {
	cfg := R2Config{
		Endpoint:      os.Getenv("R2_ENDPOINT"),
		AccessKey:     os.Getenv("R2_ACCESS_KEY"),
		SecretKey:     os.Getenv("R2_SECRET_KEY"),
		Bucket:        os.Getenv("R2_BUCKET_NAME"),
		PublicBaseURL: os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" ||
		cfg.Bucket == "" || cfg.PublicBaseURL == "" {
		return R2Config{}, ErrNotConfigured
	}
	return cfg, nil
}

type R2Client struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewR2Client(ctx context.Context, rc R2Config) (*R2Client, error) {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				rc.AccessKey,
				rc.SecretKey,
				"",
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(rc.Endpoint)
		o.UsePathStyle = true
	})

	return &R2Client{
		client:  client,
		bucket:  rc.Bucket,
		baseURL: strings.TrimRight(rc.PublicBaseURL, "/"),
	}, nil
}

// Upload stores body under key and returns its public URL.
func (r *R2Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return PublicURL(r.baseURL, key), nil
}

// PublicURL joins the bucket's public base URL and an object key.
func PublicURL(baseURL, key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(baseURL, "/"), strings.TrimLeft(key, "/"))
}
