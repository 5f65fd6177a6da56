package ads

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

// AdListFilter narrows ListPublic. Zero values mean "no constraint".
type AdListFilter struct {
	CategoryID uuid.UUID
	Subtree    bool
	Status     types.AdStatus
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
	Limit      int
	Offset     int
}

type AdvertisementRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Advertisement) (*types.Advertisement, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Advertisement, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Advertisement, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, limit, offset int) ([]*types.Advertisement, error)
	ListPublic(ctx context.Context, tx *gorm.DB, filter AdListFilter) ([]*types.Advertisement, int64, error)
	ListExpiredCandidates(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Advertisement, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
	CountActiveByCategoryID(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (int64, error)
	IncrementViewCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type advertisementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdvertisementRepo(db *gorm.DB, baseLog *logger.Logger) AdvertisementRepo {
	return &advertisementRepo{db: db, log: baseLog.With("repo", "AdvertisementRepo")}
}

func (r *advertisementRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *advertisementRepo) withDetail(q *gorm.DB) *gorm.DB {
	return q.Preload("Attributes").
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		})
}

func (r *advertisementRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Advertisement) (*types.Advertisement, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.base(tx).WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *advertisementRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Advertisement, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.Advertisement
	if err := r.withDetail(r.base(tx).WithContext(ctx)).
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

func (r *advertisementRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Advertisement, error) {
	var out []*types.Advertisement
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.withDetail(r.base(tx).WithContext(ctx)).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *advertisementRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, limit, offset int) ([]*types.Advertisement, error) {
	var out []*types.Advertisement
	if ownerID == uuid.Nil {
		return out, nil
	}
	q := r.withDetail(r.base(tx).WithContext(ctx)).
		Where("owner_id = ? AND status <> ?", ownerID, types.AdStatusDeleted).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *advertisementRepo) ListPublic(ctx context.Context, tx *gorm.DB, filter AdListFilter) ([]*types.Advertisement, int64, error) {
	q := r.base(tx).WithContext(ctx).Model(&types.Advertisement{})

	status := filter.Status
	if status == "" {
		status = types.AdStatusActive
	}
	q = q.Where("advertisement.status = ?", status)

	if filter.CategoryID != uuid.Nil {
		q = q.Joins("JOIN category_version ON category_version.id = advertisement.category_version_id")
		if filter.Subtree {
			q = q.Joins("JOIN category ON category.id = category_version.category_id").
				Where("category.tree_path LIKE ?", "%/"+filter.CategoryID.String()+"/%")
		} else {
			q = q.Where("category_version.category_id = ?", filter.CategoryID)
		}
	}
	if filter.MinPrice != nil {
		q = q.Where("advertisement.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("advertisement.price <= ?", *filter.MaxPrice)
	}
	if s := filter.Search; s != "" {
		like := "%" + s + "%"
		q = q.Where("advertisement.title ILIKE ? OR advertisement.description ILIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order("advertisement.top_ad DESC, advertisement.featured DESC, advertisement.created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var out []*types.Advertisement
	if err := r.withDetail(q).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *advertisementRepo) ListExpiredCandidates(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Advertisement, error) {
	var out []*types.Advertisement
	q := r.base(tx).WithContext(ctx).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at <= NOW()",
			[]types.AdStatus{types.AdStatusActive, types.AdStatusSuspended})
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *advertisementRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	if id == uuid.Nil || len(fields) == 0 {
		return nil
	}
	return r.base(tx).WithContext(ctx).
		Model(&types.Advertisement{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// CountActiveByCategoryID counts ACTIVE ads bound to any version of the
// category. Used to gate category deletion; drafts and suspended ads do not
// keep a category alive.
func (r *advertisementRepo) CountActiveByCategoryID(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (int64, error) {
	if categoryID == uuid.Nil {
		return 0, nil
	}
	var n int64
	err := r.base(tx).WithContext(ctx).
		Model(&types.Advertisement{}).
		Joins("JOIN category_version ON category_version.id = advertisement.category_version_id").
		Where("category_version.category_id = ? AND advertisement.status = ?",
			categoryID, types.AdStatusActive).
		Count(&n).Error
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (r *advertisementRepo) IncrementViewCount(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.base(tx).WithContext(ctx).
		Model(&types.Advertisement{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}
