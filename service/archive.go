package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/surylokesh1432/AI-Regulatory-Compliance-Checker-for-Contracts/config"
)

// ArchiveService mirrors generated artifacts (suggestions reports,
// rectified versions, regulation snapshots) to an S3-compatible bucket.
// The archive is optional: when no endpoint is configured the service
// reports unavailable and every Archive call is skipped upstream.
type ArchiveService struct {
	client *minio.Client
	bucket string
}

func NewArchiveService(cfg *config.ArchiveConfig) (*ArchiveService, error) {
	if cfg.Endpoint == "" {
		return &ArchiveService{}, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive client: %w", err)
	}
	return &ArchiveService{client: client, bucket: cfg.Bucket}, nil
}

func (s *ArchiveService) Available() bool {
	return s.client != nil && s.bucket != ""
}

// EnsureBucket creates the archive bucket if it doesn't exist yet.
func (s *ArchiveService) EnsureBucket(ctx context.Context) error {
	if !s.Available() {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	slog.Info("archive bucket created", "bucket", s.bucket)
	return nil
}

// Archive uploads one local artifact, keyed by date and filename so
// successive passes never overwrite each other.
func (s *ArchiveService) Archive(ctx context.Context, localPath string) error {
	if !s.Available() {
		return nil
	}

	objectName := fmt.Sprintf("%s/%s", time.Now().UTC().Format("2006-01-02"), filepath.Base(localPath))
	opts := minio.PutObjectOptions{ContentType: contentTypeFor(localPath)}

	if _, err := s.client.FPutObject(ctx, s.bucket, objectName, localPath, opts); err != nil {
		return fmt.Errorf("failed to archive %s: %w", filepath.Base(localPath), err)
	}
	slog.Debug("artifact archived", "bucket", s.bucket, "object", objectName)
	return nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
