// Package publish uploads calendar feeds to S3-compatible object storage and
// hands out time-limited links to them.
package publish

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ajenda/ajenda/internal/logging"
	"github.com/ajenda/ajenda/internal/netx"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotConfigured is returned when no bucket has been set up.
var ErrNotConfigured = errors.New("publishing is not configured")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const uploadURLTTL = 15 * time.Minute

// Settings locate the bucket.
type Settings struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	LinkTTL         time.Duration
}

// S3Publisher stores objects through presigned URLs.
type S3Publisher struct {
	settings Settings
	presign  *s3.PresignClient
	http     *http.Client
	log      logging.Logger
}

// NewS3Publisher builds the presign client. It does not contact the storage.
func NewS3Publisher(ctx context.Context, st Settings, log logging.Logger) (*S3Publisher, error) {
	if st.Bucket == "" {
		return nil, ErrNotConfigured
	}
	if st.LinkTTL <= 0 {
		st.LinkTTL = 24 * time.Hour
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(st.Region)}
	if st.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(st.AccessKeyID, st.SecretAccessKey, ""),
		))
	}
	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if st.Endpoint != "" {
			o.BaseEndpoint = aws.String(st.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Publisher{
		settings: st,
		presign:  s3.NewPresignClient(client),
		http:     &http.Client{Timeout: time.Minute},
		log:      log.With("component", "publisher", "bucket", st.Bucket),
	}, nil
}

// Put uploads body under key.
func (p *S3Publisher) Put(ctx context.Context, key, contentType string, body []byte) error {
	req, err := presignPutObject(p.presign, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.settings.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(uploadURLTTL))
	if err != nil {
		return fmt.Errorf("presign upload: %w", err)
	}

	if err := netx.PutPresigned(ctx, p.http, req.URL, req.SignedHeader, body); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	p.log.Info(ctx, "object uploaded", "key", key, "size", len(body))
	return nil
}

// ShareURL returns a GET link to key valid for the configured TTL.
func (p *S3Publisher) ShareURL(ctx context.Context, key string) (string, time.Time, error) {
	req, err := presignGetObject(p.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.settings.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.settings.LinkTTL))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign link: %w", err)
	}
	return req.URL, time.Now().Add(p.settings.LinkTTL), nil
}
