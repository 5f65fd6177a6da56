package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/adverto/adboard-backend/internal/platform/ctxutil"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type BucketCategory string

const (
	BucketCategoryAvatar  BucketCategory = "avatar"
	BucketCategoryAdMedia BucketCategory = "ad_media"
)

type bucketConfig struct {
	name      string
	cdnDomain string
}

// BucketService is the object-storage collaborator for advertisement media and
// user avatars. Delete is idempotent so callers can use it for rollback.
type BucketService interface {
	UploadFile(ctx context.Context, category BucketCategory, key, contentType string, file io.Reader) error
	DeleteFile(ctx context.Context, category BucketCategory, key string) error
	DeletePrefix(ctx context.Context, category BucketCategory, prefix string) error
	ListKeys(ctx context.Context, category BucketCategory, prefix string) ([]string, error)
	GetPublicURL(category BucketCategory, key string) string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	avatarBucket  bucketConfig
	mediaBucket   bucketConfig
}

func NewBucketService(log *logger.Logger) (BucketService, error) {
	serviceLog := log.With("service", "BucketService")

	avatarBucketName := os.Getenv("AVATAR_GCS_BUCKET_NAME")
	mediaBucketName := os.Getenv("AD_MEDIA_GCS_BUCKET_NAME")
	if avatarBucketName == "" {
		return nil, fmt.Errorf("missing env var AVATAR_GCS_BUCKET_NAME")
	}
	if mediaBucketName == "" {
		return nil, fmt.Errorf("missing env var AD_MEDIA_GCS_BUCKET_NAME")
	}

	ctx := context.Background()
	var opts []option.ClientOption
	if creds := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); creds != "" {
		opts = append(opts, option.WithCredentialsFile(creds))
	}
	stClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info("Object storage initialized",
		"avatar_bucket", avatarBucketName,
		"media_bucket", mediaBucketName,
	)

	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		avatarBucket: bucketConfig{
			name:      avatarBucketName,
			cdnDomain: os.Getenv("AVATAR_CDN_DOMAIN"),
		},
		mediaBucket: bucketConfig{
			name:      mediaBucketName,
			cdnDomain: os.Getenv("AD_MEDIA_CDN_DOMAIN"),
		},
	}, nil
}

func (s *bucketService) config(category BucketCategory) (bucketConfig, error) {
	switch category {
	case BucketCategoryAvatar:
		return s.avatarBucket, nil
	case BucketCategoryAdMedia:
		return s.mediaBucket, nil
	default:
		return bucketConfig{}, fmt.Errorf("unknown bucket category %q", category)
	}
}

func (s *bucketService) UploadFile(ctx context.Context, category BucketCategory, key, contentType string, file io.Reader) error {
	cfg, err := s.config(category)
	if err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key required")
	}
	ctx = ctxutil.Default(ctx)
	w := s.storageClient.Bucket(cfg.name).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("upload %s/%s: %w", cfg.name, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize %s/%s: %w", cfg.name, key, err)
	}
	return nil
}

func (s *bucketService) DeleteFile(ctx context.Context, category BucketCategory, key string) error {
	cfg, err := s.config(category)
	if err != nil {
		return err
	}
	ctx = ctxutil.Default(ctx)
	err = s.storageClient.Bucket(cfg.name).Object(key).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	return err
}

func (s *bucketService) DeletePrefix(ctx context.Context, category BucketCategory, prefix string) error {
	keys, err := s.ListKeys(ctx, category, prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.DeleteFile(ctx, category, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *bucketService) ListKeys(ctx context.Context, category BucketCategory, prefix string) ([]string, error) {
	cfg, err := s.config(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctxutil.Default(ctx), 30*time.Second)
	defer cancel()

	var keys []string
	it := s.storageClient.Bucket(cfg.name).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", cfg.name, prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

func (s *bucketService) GetPublicURL(category BucketCategory, key string) string {
	cfg, err := s.config(category)
	if err != nil {
		return ""
	}
	if cfg.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", strings.TrimSuffix(cfg.cdnDomain, "/"), key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.name, key)
}
