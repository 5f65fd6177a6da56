package ads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type AdAttributeRepo interface {
	// ReplaceForAd swaps the full attribute set of an ad in one shot. Callers
	// run it inside the same transaction as the ad write.
	ReplaceForAd(ctx context.Context, tx *gorm.DB, adID uuid.UUID, rows []types.AdAttribute) error
	GetByAdIDs(ctx context.Context, tx *gorm.DB, adIDs []uuid.UUID) ([]*types.AdAttribute, error)
	DeleteByAdID(ctx context.Context, tx *gorm.DB, adID uuid.UUID) error
}

type adAttributeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdAttributeRepo(db *gorm.DB, baseLog *logger.Logger) AdAttributeRepo {
	return &adAttributeRepo{db: db, log: baseLog.With("repo", "AdAttributeRepo")}
}

func (r *adAttributeRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *adAttributeRepo) ReplaceForAd(ctx context.Context, tx *gorm.DB, adID uuid.UUID, rows []types.AdAttribute) error {
	if adID == uuid.Nil {
		return nil
	}
	t := r.base(tx).WithContext(ctx)
	if err := t.Where("advertisement_id = ?", adID).Delete(&types.AdAttribute{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for i := range rows {
		rows[i].AdvertisementID = adID
	}
	return t.Create(&rows).Error
}

func (r *adAttributeRepo) GetByAdIDs(ctx context.Context, tx *gorm.DB, adIDs []uuid.UUID) ([]*types.AdAttribute, error) {
	var out []*types.AdAttribute
	if len(adIDs) == 0 {
		return out, nil
	}
	if err := r.base(tx).WithContext(ctx).
		Where("advertisement_id IN ?", adIDs).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *adAttributeRepo) DeleteByAdID(ctx context.Context, tx *gorm.DB, adID uuid.UUID) error {
	if adID == uuid.Nil {
		return nil
	}
	return r.base(tx).WithContext(ctx).
		Where("advertisement_id = ?", adID).
		Delete(&types.AdAttribute{}).Error
}
