// Package storage hands out presigned S3 URLs for vault documents.  The
// service never proxies file bytes.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/zenithbooks/zenithbooks/internal/config"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

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

// Presigner signs upload and download URLs against one bucket.
type Presigner struct {
	client *s3.PresignClient
	bucket string
	ttl    time.Duration
}

// NewPresigner builds an S3 client from static credentials.  A non-empty
// S3BaseEndpoint switches to path-style addressing for MinIO.
func NewPresigner(ctx context.Context, cfg config.VaultConfig) (*Presigner, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey, cfg.S3SecretKey, "")))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Presigner{client: s3.NewPresignClient(client), bucket: cfg.S3Bucket, ttl: ttl}, nil
}

// ObjectKey is where a document version is stored.
func ObjectKey(ownerID uint64, documentID string, version int) string {
	return fmt.Sprintf("vault/%d/%s/v%d", ownerID, documentID, version)
}

// PutURL returns a presigned URL the owner uploads the file to.
func (p *Presigner) PutURL(ctx context.Context, key string) (string, time.Time, error) {
	req, err := presignPutObject(p.client, ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign put: %w", err)
	}
	return req.URL, time.Now().UTC().Add(p.ttl), nil
}

// GetURL returns a presigned download URL that saves as fileName.
func (p *Presigner) GetURL(ctx context.Context, key, fileName string) (string, time.Time, error) {
	req, err := presignGetObject(p.client, ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(p.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", fileName)),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign get: %w", err)
	}
	return req.URL, time.Now().UTC().Add(p.ttl), nil
}
