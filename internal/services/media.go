package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/adverto/adboard-backend/internal/data/repos"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/platform/gcs"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

// MediaUpload is one incoming media file for an advertisement.
type MediaUpload struct {
	FileName    string
	ContentType string
	Reader      io.Reader
}

var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// MediaService stores ad photos in the bucket and keeps the media rows in
// step with the stored objects.
type MediaService interface {
	AttachMedia(ctx context.Context, tx *gorm.DB, ad *types.Advertisement, maxPhotos int, uploads []MediaUpload) ([]*types.AdMedia, error)
	RemoveMedia(ctx context.Context, tx *gorm.DB, ad *types.Advertisement, mediaID uuid.UUID) error
	// PurgeForAd removes every stored object and row of the ad. Object
	// deletion is idempotent so a partial earlier purge does not fail it.
	PurgeForAd(ctx context.Context, tx *gorm.DB, adID uuid.UUID) error
}

type mediaService struct {
	db        *gorm.DB
	log       *logger.Logger
	bucket    gcs.BucketService
	mediaRepo repos.AdMediaRepo
}

func NewMediaService(db *gorm.DB, baseLog *logger.Logger, bucket gcs.BucketService, mediaRepo repos.AdMediaRepo) MediaService {
	return &mediaService{
		db:        db,
		log:       baseLog.With("service", "MediaService"),
		bucket:    bucket,
		mediaRepo: mediaRepo,
	}
}

func (s *mediaService) AttachMedia(ctx context.Context, tx *gorm.DB, ad *types.Advertisement, maxPhotos int, uploads []MediaUpload) ([]*types.AdMedia, error) {
	const op = "MediaService.AttachMedia"
	if ad == nil || ad.ID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "advertisement required")
	}
	if len(uploads) == 0 {
		return nil, aggregates.ValidationError(op, "no files submitted")
	}
	for _, u := range uploads {
		if !allowedMediaTypes[strings.ToLower(strings.TrimSpace(u.ContentType))] {
			return nil, aggregates.ValidationError(op, "unsupported media type "+u.ContentType)
		}
	}

	existing, err := s.mediaRepo.CountByAdID(ctx, tx, ad.ID)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if maxPhotos > 0 && int(existing)+len(uploads) > maxPhotos {
		return nil, aggregates.NewError(aggregates.CodePreconditionFailed, op,
			fmt.Sprintf("package allows at most %d photos", maxPhotos), nil)
	}

	type uploaded struct {
		index int
		key   string
	}
	results := make([]uploaded, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, u := range uploads {
		i, u := i, u
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			key := fmt.Sprintf("%s/%s%s", ad.ID, uuid.New(), extensionFor(u.FileName, u.ContentType))
			if err := s.bucket.UploadFile(gctx, gcs.BucketCategoryAdMedia, key, u.ContentType, u.Reader); err != nil {
				return err
			}
			results[i] = uploaded{index: i, key: key}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Best-effort rollback of whatever made it into the bucket.
		for _, r := range results {
			if r.key == "" {
				continue
			}
			if derr := s.bucket.DeleteFile(ctx, gcs.BucketCategoryAdMedia, r.key); derr != nil {
				s.log.Warn("orphaned media object left behind", "key", r.key, "error", derr)
			}
		}
		s.log.Error("media upload failed", "error", err, "ad_id", ad.ID)
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}

	rows := make([]*types.AdMedia, 0, len(results))
	for i, r := range results {
		row := &types.AdMedia{
			ID:              uuid.New(),
			AdvertisementID: ad.ID,
			StorageKey:      r.key,
			PublicURL:       s.bucket.GetPublicURL(gcs.BucketCategoryAdMedia, r.key),
			ContentType:     uploads[i].ContentType,
			SortOrder:       int(existing) + i,
		}
		if _, err := s.mediaRepo.Create(ctx, tx, row); err != nil {
			s.log.Error("persist media row failed", "error", err, "ad_id", ad.ID, "key", r.key)
			return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *mediaService) RemoveMedia(ctx context.Context, tx *gorm.DB, ad *types.Advertisement, mediaID uuid.UUID) error {
	const op = "MediaService.RemoveMedia"
	if ad == nil || mediaID == uuid.Nil {
		return aggregates.ValidationError(op, "advertisement and media id required")
	}
	row, err := s.mediaRepo.GetByID(ctx, tx, mediaID)
	if err != nil {
		return aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if row == nil || row.AdvertisementID != ad.ID {
		return aggregates.NotFoundError(op, "media not found on this advertisement")
	}
	if err := s.mediaRepo.FullDeleteByIDs(ctx, tx, []uuid.UUID{mediaID}); err != nil {
		return aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if err := s.bucket.DeleteFile(ctx, gcs.BucketCategoryAdMedia, row.StorageKey); err != nil {
		s.log.Warn("orphaned media object left behind", "key", row.StorageKey, "error", err)
	}
	return nil
}

func (s *mediaService) PurgeForAd(ctx context.Context, tx *gorm.DB, adID uuid.UUID) error {
	const op = "MediaService.PurgeForAd"
	if adID == uuid.Nil {
		return aggregates.ValidationError(op, "advertisement id required")
	}
	if err := s.mediaRepo.FullDeleteByAdID(ctx, tx, adID); err != nil {
		return aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if err := s.bucket.DeletePrefix(ctx, gcs.BucketCategoryAdMedia, adID.String()+"/"); err != nil {
		s.log.Warn("media prefix purge incomplete", "ad_id", adID, "error", err)
	}
	return nil
}

func extensionFor(fileName, contentType string) string {
	if i := strings.LastIndex(fileName, "."); i >= 0 && i < len(fileName)-1 {
		return strings.ToLower(fileName[i:])
	}
	switch strings.ToLower(contentType) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return ""
}
