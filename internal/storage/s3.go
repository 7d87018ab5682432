package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/viewtube/backend/internal/config"
	"github.com/viewtube/backend/internal/logging"
	"github.com/viewtube/backend/internal/models"
)

// S3MediaStore uploads staged media files to an S3-compatible host and
// deletes them by object key. It implements the blob-store contract used by
// the upload handlers: the local temp file is always removed, whether or
// not the upload succeeds.
type S3MediaStore struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

// NewS3MediaStore configures a client and uploader targeting the provided
// object store. Static credentials and a custom endpoint are supported for
// R2/minio-style hosts.
func NewS3MediaStore(ctx context.Context, cfg config.ObjectStoreConfig) (*S3MediaStore, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("media store: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if strings.TrimSpace(cfg.Endpoint) != "" {
			o.BaseEndpoint = aws.String(strings.TrimSuffix(cfg.Endpoint, "/"))
		}
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3MediaStore{
		client:   client,
		uploader: uploader,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}, nil
}

// Store uploads the staged file at localPath under the given folder and
// returns the public URL plus the object key used for later deletion. The
// temp file is removed before Store returns, on every path.
func (s *S3MediaStore) Store(ctx context.Context, localPath, folder string) (models.MediaAsset, error) {
	defer func() {
		if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
			logging.FromContext(ctx).Warn("remove staged upload", "path", localPath, "error", err)
		}
	}()

	f, err := os.Open(localPath)
	if err != nil {
		return models.MediaAsset{}, fmt.Errorf("open staged upload %s: %w", localPath, err)
	}
	defer f.Close()

	key := path.Join(strings.Trim(folder, "/"), uuid.NewString()+strings.ToLower(filepath.Ext(localPath)))

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
		ACL:    s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return models.MediaAsset{}, fmt.Errorf("media store upload %s: %w", key, err)
	}

	return models.MediaAsset{URL: s.publicURL(key), Key: key}, nil
}

// Remove deletes the object behind the provided key. Deletion is
// best-effort: failures are logged and swallowed so a dangling remote
// object never fails the request that orphaned it. Reconciliation of
// orphans happens out-of-band from these logs.
func (s *S3MediaStore) Remove(ctx context.Context, key, kind string) {
	if strings.TrimSpace(key) == "" {
		return
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logging.FromContext(ctx).Error("media store delete failed", "key", key, "kind", kind, "error", err)
		return
	}

	logging.FromContext(ctx).Debug("media object deleted", "key", key, "kind", kind)
}

func (s *S3MediaStore) publicURL(key string) string {
	if s.baseURL == "" {
		return key
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key)
}

