package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dataagg "github.com/adverto/adboard-backend/internal/data/aggregates"
	"github.com/adverto/adboard-backend/internal/data/repos"
	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/ads"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/platform/dbctx"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type CreateAdInput struct {
	CategoryID uuid.UUID             `json:"category_id"`
	PackageID  uuid.UUID             `json:"package_id"`
	Title      string                `json:"title"`
	Description string               `json:"description"`
	Price      float64               `json:"price"`
	Negotiable bool                  `json:"negotiable"`
	Condition  types.ItemCondition   `json:"condition"`
	Latitude   *float64              `json:"latitude,omitempty"`
	Longitude  *float64              `json:"longitude,omitempty"`
	Address    string                `json:"address"`
	Attributes []AttributeValueInput `json:"attributes"`
}

type UpdateAdInput struct {
	Title       *string               `json:"title,omitempty"`
	Description *string               `json:"description,omitempty"`
	Price       *float64              `json:"price,omitempty"`
	Negotiable  *bool                 `json:"negotiable,omitempty"`
	Condition   *types.ItemCondition  `json:"condition,omitempty"`
	Latitude    *float64              `json:"latitude,omitempty"`
	Longitude   *float64              `json:"longitude,omitempty"`
	Address     *string               `json:"address,omitempty"`
	Attributes  []AttributeValueInput `json:"attributes,omitempty"`
}

type AdvertisementService interface {
	CreateAd(ctx context.Context, ownerID uuid.UUID, input CreateAdInput) (*types.Advertisement, error)
	GetAd(ctx context.Context, tx *gorm.DB, adID uuid.UUID, viewerID uuid.UUID) (*types.Advertisement, error)
	ListPublic(ctx context.Context, tx *gorm.DB, filter repos.AdListFilter) ([]*types.Advertisement, int64, error)
	ListOwn(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, limit, offset int) ([]*types.Advertisement, error)

	// UpdateAd re-validates submitted attributes against the version the ad
	// was frozen to at creation, never against the category's current schema.
	UpdateAd(ctx context.Context, ownerID, adID uuid.UUID, input UpdateAdInput) (*types.Advertisement, error)

	PublishAd(ctx context.Context, ownerID, adID uuid.UUID) (*types.Advertisement, error)
	SuspendAd(ctx context.Context, adminID, adID uuid.UUID, reason string) (*types.Advertisement, error)
	DeleteAd(ctx context.Context, actorID uuid.UUID, isAdmin bool, adID uuid.UUID) error

	// AddMedia stores photos for an owned ad, bounded by the ad's package.
	AddMedia(ctx context.Context, ownerID, adID uuid.UUID, uploads []MediaUpload) ([]*types.AdMedia, error)
	RemoveMedia(ctx context.Context, ownerID, adID, mediaID uuid.UUID) error

	// ExpireDueAds sweeps ads whose expiry passed. Returns how many moved.
	ExpireDueAds(ctx context.Context) (int, error)
}

type advertisementService struct {
	db             *gorm.DB
	log            *logger.Logger
	txRunner       dataagg.TxRunner
	adRepo         repos.AdvertisementRepo
	attrRepo       repos.AdAttributeRepo
	packageRepo    repos.AdPackageRepo
	versionService CategoryVersionService
	binding        AdBindingService
	media          MediaService
	notifier       Notifier
}

func NewAdvertisementService(
	db *gorm.DB,
	baseLog *logger.Logger,
	txRunner dataagg.TxRunner,
	adRepo repos.AdvertisementRepo,
	attrRepo repos.AdAttributeRepo,
	packageRepo repos.AdPackageRepo,
	versionService CategoryVersionService,
	binding AdBindingService,
	media MediaService,
	notifier Notifier,
) AdvertisementService {
	return &advertisementService{
		db:             db,
		log:            baseLog.With("service", "AdvertisementService"),
		txRunner:       txRunner,
		adRepo:         adRepo,
		attrRepo:       attrRepo,
		packageRepo:    packageRepo,
		versionService: versionService,
		binding:        binding,
		media:          media,
		notifier:       notifier,
	}
}

func (s *advertisementService) CreateAd(ctx context.Context, ownerID uuid.UUID, input CreateAdInput) (*types.Advertisement, error) {
	const op = "AdvertisementService.CreateAd"
	if ownerID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "owner id required")
	}
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, aggregates.ValidationError(op, "title required")
	}
	if input.Price < 0 {
		return nil, aggregates.ValidationError(op, "price cannot be negative")
	}
	if input.CategoryID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "category id required")
	}
	if input.Condition == "" {
		input.Condition = types.ConditionUsed
	}
	if input.Condition != types.ConditionNew && input.Condition != types.ConditionUsed {
		return nil, aggregates.ValidationError(op, "unknown item condition")
	}
	if input.Latitude != nil && (*input.Latitude < -90 || *input.Latitude > 90) {
		return nil, aggregates.ValidationError(op, "latitude out of range")
	}
	if input.Longitude != nil && (*input.Longitude < -180 || *input.Longitude > 180) {
		return nil, aggregates.ValidationError(op, "longitude out of range")
	}

	var ad *types.Advertisement
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		pkg, err := s.packageRepo.GetByID(dbc.Ctx, dbc.Tx, input.PackageID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if pkg == nil || !pkg.Active {
			return aggregates.NotFoundError(op, "ad package not found")
		}

		version, err := s.binding.BindCurrentVersion(dbc.Ctx, dbc.Tx, input.CategoryID)
		if err != nil {
			return err
		}
		rows, err := s.binding.ValidateAndBuildValues(version, input.Attributes)
		if err != nil {
			return err
		}

		expiresAt := time.Now().UTC().AddDate(0, 0, pkg.DurationDays)
		ad = &types.Advertisement{
			ID:                uuid.New(),
			OwnerID:           ownerID,
			CategoryVersionID: version.ID,
			PackageID:         pkg.ID,
			Title:             input.Title,
			Description:       strings.TrimSpace(input.Description),
			Price:             input.Price,
			Negotiable:        input.Negotiable,
			Latitude:          input.Latitude,
			Longitude:         input.Longitude,
			Address:           strings.TrimSpace(input.Address),
			Condition:         input.Condition,
			Status:            types.AdStatusDraft,
			Featured:          pkg.Featured,
			TopAd:             pkg.TopAd,
			ExpiresAt:         &expiresAt,
		}
		if _, err := s.adRepo.Create(dbc.Ctx, dbc.Tx, ad); err != nil {
			s.log.Error("create ad failed", "error", err, "owner_id", ownerID)
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if err := s.attrRepo.ReplaceForAd(dbc.Ctx, dbc.Tx, ad.ID, rows); err != nil {
			s.log.Error("persist ad attributes failed", "error", err, "ad_id", ad.ID)
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		ad.Attributes = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("ad created", "ad_id", ad.ID, "owner_id", ownerID, "category_version_id", ad.CategoryVersionID)
	return ad, nil
}

func (s *advertisementService) GetAd(ctx context.Context, tx *gorm.DB, adID uuid.UUID, viewerID uuid.UUID) (*types.Advertisement, error) {
	const op = "AdvertisementService.GetAd"
	ad, err := s.adRepo.GetByID(ctx, tx, adID)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	if ad == nil {
		return nil, aggregates.NotFoundError(op, "advertisement not found")
	}
	if ad.Status != types.AdStatusActive && ad.OwnerID != viewerID {
		return nil, aggregates.NotFoundError(op, "advertisement not found")
	}
	if ad.Status == types.AdStatusActive && viewerID != ad.OwnerID {
		if err := s.adRepo.IncrementViewCount(ctx, tx, adID); err != nil {
			s.log.Warn("view count increment failed", "error", err, "ad_id", adID)
		}
	}
	return ad, nil
}

func (s *advertisementService) ListPublic(ctx context.Context, tx *gorm.DB, filter repos.AdListFilter) ([]*types.Advertisement, int64, error) {
	const op = "AdvertisementService.ListPublic"
	filter.Status = types.AdStatusActive
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	items, total, err := s.adRepo.ListPublic(ctx, tx, filter)
	if err != nil {
		return nil, 0, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return items, total, nil
}

func (s *advertisementService) ListOwn(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, limit, offset int) ([]*types.Advertisement, error) {
	const op = "AdvertisementService.ListOwn"
	if ownerID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "owner id required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := s.adRepo.ListByOwner(ctx, tx, ownerID, limit, offset)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	return items, nil
}

func (s *advertisementService) UpdateAd(ctx context.Context, ownerID, adID uuid.UUID, input UpdateAdInput) (*types.Advertisement, error) {
	const op = "AdvertisementService.UpdateAd"

	var out *types.Advertisement
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		ad, err := s.requireOwnedAd(dbc.Ctx, dbc.Tx, op, ownerID, adID)
		if err != nil {
			return err
		}
		if ad.Status != types.AdStatusDraft && ad.Status != types.AdStatusActive {
			return aggregates.NewError(aggregates.CodePreconditionFailed, op,
				"only draft or active advertisements can be edited", nil)
		}

		fields := map[string]any{}
		if input.Title != nil {
			t := strings.TrimSpace(*input.Title)
			if t == "" {
				return aggregates.ValidationError(op, "title cannot be empty")
			}
			fields["title"] = t
		}
		if input.Description != nil {
			fields["description"] = strings.TrimSpace(*input.Description)
		}
		if input.Price != nil {
			if *input.Price < 0 {
				return aggregates.ValidationError(op, "price cannot be negative")
			}
			fields["price"] = *input.Price
		}
		if input.Negotiable != nil {
			fields["negotiable"] = *input.Negotiable
		}
		if input.Condition != nil {
			if *input.Condition != types.ConditionNew && *input.Condition != types.ConditionUsed {
				return aggregates.ValidationError(op, "unknown item condition")
			}
			fields["condition"] = *input.Condition
		}
		if input.Latitude != nil {
			if *input.Latitude < -90 || *input.Latitude > 90 {
				return aggregates.ValidationError(op, "latitude out of range")
			}
			fields["latitude"] = *input.Latitude
		}
		if input.Longitude != nil {
			if *input.Longitude < -180 || *input.Longitude > 180 {
				return aggregates.ValidationError(op, "longitude out of range")
			}
			fields["longitude"] = *input.Longitude
		}
		if input.Address != nil {
			fields["address"] = strings.TrimSpace(*input.Address)
		}

		if input.Attributes != nil {
			version, err := s.versionService.GetVersionByID(dbc.Ctx, dbc.Tx, ad.CategoryVersionID)
			if err != nil {
				return err
			}
			rows, err := s.binding.ValidateAndBuildValues(version, input.Attributes)
			if err != nil {
				return err
			}
			if err := s.attrRepo.ReplaceForAd(dbc.Ctx, dbc.Tx, ad.ID, rows); err != nil {
				s.log.Error("replace ad attributes failed", "error", err, "ad_id", ad.ID)
				return aggregates.Wrap(aggregates.CodeInternal, op, err)
			}
		}

		if len(fields) > 0 {
			if err := s.adRepo.UpdateFields(dbc.Ctx, dbc.Tx, ad.ID, fields); err != nil {
				s.log.Error("update ad failed", "error", err, "ad_id", ad.ID)
				return aggregates.Wrap(aggregates.CodeInternal, op, err)
			}
		}

		out, err = s.adRepo.GetByID(dbc.Ctx, dbc.Tx, ad.ID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *advertisementService) PublishAd(ctx context.Context, ownerID, adID uuid.UUID) (*types.Advertisement, error) {
	const op = "AdvertisementService.PublishAd"

	var out *types.Advertisement
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		ad, err := s.requireOwnedAd(dbc.Ctx, dbc.Tx, op, ownerID, adID)
		if err != nil {
			return err
		}
		if err := s.transition(dbc.Ctx, dbc.Tx, op, ad, types.AdStatusActive, nil); err != nil {
			return err
		}
		out, err = s.adRepo.GetByID(dbc.Ctx, dbc.Tx, ad.ID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("ad published", "ad_id", adID, "owner_id", ownerID)
	return out, nil
}

func (s *advertisementService) SuspendAd(ctx context.Context, adminID, adID uuid.UUID, reason string) (*types.Advertisement, error) {
	const op = "AdvertisementService.SuspendAd"
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, aggregates.ValidationError(op, "suspension reason required")
	}

	var out *types.Advertisement
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		ad, err := s.adRepo.GetByID(dbc.Ctx, dbc.Tx, adID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if ad == nil {
			return aggregates.NotFoundError(op, "advertisement not found")
		}
		extra := map[string]any{"rejection_message": reason}
		if err := s.transition(dbc.Ctx, dbc.Tx, op, ad, types.AdStatusSuspended, extra); err != nil {
			return err
		}
		out, err = s.adRepo.GetByID(dbc.Ctx, dbc.Tx, ad.ID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.AdSuspended(ctx, out, reason)
	}
	s.log.Info("ad suspended", "ad_id", adID, "admin_id", adminID)
	return out, nil
}

func (s *advertisementService) DeleteAd(ctx context.Context, actorID uuid.UUID, isAdmin bool, adID uuid.UUID) error {
	const op = "AdvertisementService.DeleteAd"
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		ad, err := s.adRepo.GetByID(dbc.Ctx, dbc.Tx, adID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if ad == nil {
			return aggregates.NotFoundError(op, "advertisement not found")
		}
		if !isAdmin && ad.OwnerID != actorID {
			return aggregates.NotFoundError(op, "advertisement not found")
		}
		if err := s.transition(dbc.Ctx, dbc.Tx, op, ad, types.AdStatusDeleted, nil); err != nil {
			return err
		}
		return s.media.PurgeForAd(dbc.Ctx, dbc.Tx, ad.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info("ad deleted", "ad_id", adID, "actor_id", actorID)
	return nil
}

func (s *advertisementService) ExpireDueAds(ctx context.Context) (int, error) {
	const op = "AdvertisementService.ExpireDueAds"
	moved := 0
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		due, err := s.adRepo.ListExpiredCandidates(dbc.Ctx, dbc.Tx, 500)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		for _, ad := range due {
			if !ads.CanTransition(ad.Status, types.AdStatusExpired) {
				continue
			}
			if err := s.adRepo.UpdateFields(dbc.Ctx, dbc.Tx, ad.ID, map[string]any{
				"status": types.AdStatusExpired,
			}); err != nil {
				return aggregates.Wrap(aggregates.CodeInternal, op, err)
			}
			moved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		s.log.Info("expired due ads", "count", moved)
	}
	return moved, nil
}

func (s *advertisementService) AddMedia(ctx context.Context, ownerID, adID uuid.UUID, uploads []MediaUpload) ([]*types.AdMedia, error) {
	const op = "AdvertisementService.AddMedia"
	if len(uploads) == 0 {
		return nil, aggregates.ValidationError(op, "no files submitted")
	}
	var attached []*types.AdMedia
	err := s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		ad, err := s.requireOwnedAd(dbc.Ctx, dbc.Tx, op, ownerID, adID)
		if err != nil {
			return err
		}
		pkg, err := s.packageRepo.GetByID(dbc.Ctx, dbc.Tx, ad.PackageID)
		if err != nil {
			return aggregates.Wrap(aggregates.CodeInternal, op, err)
		}
		if pkg == nil {
			return aggregates.NewError(aggregates.CodeInternal, op, "ad package missing", nil)
		}
		attached, err = s.media.AttachMedia(dbc.Ctx, dbc.Tx, ad, pkg.MaxPhotos, uploads)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("media attached", "ad_id", adID, "count", len(attached))
	return attached, nil
}

func (s *advertisementService) RemoveMedia(ctx context.Context, ownerID, adID, mediaID uuid.UUID) error {
	const op = "AdvertisementService.RemoveMedia"
	return s.txRunner.InTx(ctx, func(dbc dbctx.Context) error {
		ad, err := s.requireOwnedAd(dbc.Ctx, dbc.Tx, op, ownerID, adID)
		if err != nil {
			return err
		}
		return s.media.RemoveMedia(dbc.Ctx, dbc.Tx, ad, mediaID)
	})
}

func (s *advertisementService) requireOwnedAd(ctx context.Context, tx *gorm.DB, op string, ownerID, adID uuid.UUID) (*types.Advertisement, error) {
	if ownerID == uuid.Nil || adID == uuid.Nil {
		return nil, aggregates.ValidationError(op, "owner and advertisement id required")
	}
	ad, err := s.adRepo.GetByID(ctx, tx, adID)
	if err != nil {
		return nil, aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	// Ownership failures read as not-found so ad ids cannot be probed.
	if ad == nil || ad.OwnerID != ownerID {
		return nil, aggregates.NotFoundError(op, "advertisement not found")
	}
	return ad, nil
}

func (s *advertisementService) transition(ctx context.Context, tx *gorm.DB, op string, ad *types.Advertisement, to types.AdStatus, extra map[string]any) error {
	if !ads.CanTransition(ad.Status, to) {
		return aggregates.ConflictError(op,
			"status cannot move from "+string(ad.Status)+" to "+string(to))
	}
	fields := map[string]any{"status": to}
	for k, v := range extra {
		fields[k] = v
	}
	if err := s.adRepo.UpdateFields(ctx, tx, ad.ID, fields); err != nil {
		s.log.Error("status transition failed", "error", err, "ad_id", ad.ID, "to", to)
		return aggregates.Wrap(aggregates.CodeInternal, op, err)
	}
	ad.Status = to
	return nil
}
