// internal/services/storage_service.go
package services

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/atelier-backend/internal/config"
	"github.com/javajoker/atelier-backend/internal/models"
)

// StorageService resolves download links for product attachments stored in S3.
type StorageService struct {
	s3Client *s3.S3
	bucket   string
	ttl      time.Duration
}

func NewStorageService(cfg config.AWSConfig) (*StorageService, error) {
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	if cfg.AccessKeyID == "" {
		// No credentials: snapshots carry attachments without links
		return &StorageService{bucket: cfg.S3Bucket, ttl: ttl}, nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		bucket:   cfg.S3Bucket,
		ttl:      ttl,
	}, nil
}

// Enabled reports whether an S3 client is configured.
func (s *StorageService) Enabled() bool {
	return s != nil && s.s3Client != nil
}

func (s *StorageService) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("S3 client not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url, nil
}

// FileURL is a workflow.FileURLFunc. Failures leave the link empty.
func (s *StorageService) FileURL(file models.ProductFile) string {
	if !s.Enabled() || file.StorageKey == "" {
		return ""
	}
	url, err := s.GeneratePresignedURL(file.StorageKey, s.ttl)
	if err != nil {
		logrus.WithError(err).WithField("file_id", file.ID).Warn("Failed to presign product file")
		return ""
	}
	return url
}
