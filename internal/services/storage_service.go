// internal/services/storage_service.go
package services

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/tianguisbeats/tianguis-backend/internal/config"
)

// ErrStorageUnavailable is returned by a nil StorageService, so callers that
// tolerate a failed storage setup get an error instead of a panic.
var ErrStorageUnavailable = errors.New("storage is not configured")

type StorageService struct {
	s3Client *s3.S3
	cfg      *config.Config
}

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		cfg:      cfg,
	}, nil
}

// UploadBytes stores an in-memory document (contract PDFs, rendered artwork)
// under the given folder and returns its public URL.
func (s *StorageService) UploadBytes(folder, filename string, data []byte, contentType string) (string, error) {
	if s == nil || s.s3Client == nil {
		return "", ErrStorageUnavailable
	}
	key := fmt.Sprintf("%s/%s", strings.Trim(folder, "/"), filename)

	_, err := s.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.AWS.S3Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return s.PublicURL(key), nil
}

// PublicURL resolves an object key to its externally reachable URL, preferring
// the CloudFront distribution when one is configured.
func (s *StorageService) PublicURL(key string) string {
	if s.cfg.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.AWS.CloudFrontURL, "/"), key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.AWS.S3Bucket, s.cfg.AWS.Region, key)
}

// PresignedDownloadURL grants temporary access to a private object, used for
// contract downloads from the buyer's order history.
func (s *StorageService) PresignedDownloadURL(key string, expiry time.Duration) (string, error) {
	if s == nil || s.s3Client == nil {
		return "", ErrStorageUnavailable
	}
	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.cfg.AWS.S3Bucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign URL: %w", err)
	}
	return url, nil
}

// DeleteObject removes a stored object. Missing keys are not an error.
func (s *StorageService) DeleteObject(key string) error {
	if s == nil || s.s3Client == nil {
		return ErrStorageUnavailable
	}
	_, err := s.s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// GenerateFileName produces a collision-free storage name preserving the
// original extension.
func GenerateFileName(original string) string {
	ext := filepath.Ext(original)
	return fmt.Sprintf("%d-%s%s", time.Now().Unix(), uuid.New().String()[:8], ext)
}
