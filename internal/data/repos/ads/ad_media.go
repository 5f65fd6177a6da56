package ads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type AdMediaRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.AdMedia) (*types.AdMedia, error)
	GetByAdID(ctx context.Context, tx *gorm.DB, adID uuid.UUID) ([]*types.AdMedia, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AdMedia, error)
	CountByAdID(ctx context.Context, tx *gorm.DB, adID uuid.UUID) (int64, error)
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
	FullDeleteByAdID(ctx context.Context, tx *gorm.DB, adID uuid.UUID) error
}

type adMediaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdMediaRepo(db *gorm.DB, baseLog *logger.Logger) AdMediaRepo {
	return &adMediaRepo{db: db, log: baseLog.With("repo", "AdMediaRepo")}
}

func (r *adMediaRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *adMediaRepo) Create(ctx context.Context, tx *gorm.DB, row *types.AdMedia) (*types.AdMedia, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.base(tx).WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *adMediaRepo) GetByAdID(ctx context.Context, tx *gorm.DB, adID uuid.UUID) ([]*types.AdMedia, error) {
	var out []*types.AdMedia
	if adID == uuid.Nil {
		return out, nil
	}
	if err := r.base(tx).WithContext(ctx).
		Where("advertisement_id = ?", adID).
		Order("sort_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *adMediaRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AdMedia, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.AdMedia
	if err := r.base(tx).WithContext(ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *adMediaRepo) CountByAdID(ctx context.Context, tx *gorm.DB, adID uuid.UUID) (int64, error) {
	if adID == uuid.Nil {
		return 0, nil
	}
	var n int64
	if err := r.base(tx).WithContext(ctx).
		Model(&types.AdMedia{}).
		Where("advertisement_id = ?", adID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *adMediaRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.base(tx).WithContext(ctx).
		Unscoped().
		Where("id IN ?", ids).
		Delete(&types.AdMedia{}).Error
}

func (r *adMediaRepo) FullDeleteByAdID(ctx context.Context, tx *gorm.DB, adID uuid.UUID) error {
	if adID == uuid.Nil {
		return nil
	}
	return r.base(tx).WithContext(ctx).
		Unscoped().
		Where("advertisement_id = ?", adID).
		Delete(&types.AdMedia{}).Error
}
