package storage

import (
	"context"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/wadjakorntonsri/gift-bundle/pkg/config"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
)

// S3Storage presigns PUT uploads for gift images.
type S3Storage struct {
	client *s3.S3
	bucket string
	ttl    time.Duration
}

func NewS3Storage(cfg *config.Config) (*S3Storage, error) {
	awsCfg := aws.NewConfig().WithRegion(cfg.S3Region)
	if cfg.S3AccessKey != "" {
		awsCfg = awsCfg.WithCredentials(credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, ""))
	}
	// S3-compatible stores (MinIO, R2) are addressed by path.
	if cfg.S3Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.S3Endpoint).WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, err
	}

	ttl := cfg.UploadURLTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &S3Storage{
		client: s3.New(sess),
		bucket: cfg.S3Bucket,
		ttl:    ttl,
	}, nil
}

func (s *S3Storage) PresignUpload(ctx context.Context, key, contentType string) (*domain.UploadURL, error) {
	req, _ := s.client.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	req.SetContext(ctx)

	signed, err := req.Presign(s.ttl)
	if err != nil {
		return nil, err
	}

	objectURL, err := url.Parse(signed)
	if err != nil {
		return nil, err
	}
	objectURL.RawQuery = ""

	return &domain.UploadURL{
		URL:           signed,
		ObjectURL:     objectURL.String(),
		ExpirySeconds: int64(s.ttl / time.Second),
	}, nil
}

var _ ports.UploadURLIssuer = (*S3Storage)(nil)
