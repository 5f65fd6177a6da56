package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type CategoryVersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.CategoryVersion) (*types.CategoryVersion, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CategoryVersion, error)
	// GetOpenByCategoryID returns every version with valid_to IS NULL. More than
	// one row is a corruption signal the caller must surface, so no limit is
	// applied here.
	GetOpenByCategoryID(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) ([]*types.CategoryVersion, error)
	// GetAtTime returns every version whose window covers the instant. Exactly
	// one row is expected; overlap detection is the caller's job.
	GetAtTime(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, at time.Time) ([]*types.CategoryVersion, error)
	GetLatestByCategoryID(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (*types.CategoryVersion, error)
	ListByCategoryID(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) ([]*types.CategoryVersion, error)
	CurrentNameExists(ctx context.Context, tx *gorm.DB, name string, excludeCategoryID uuid.UUID) (bool, error)
}

type categoryVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryVersionRepo(db *gorm.DB, baseLog *logger.Logger) CategoryVersionRepo {
	return &categoryVersionRepo{db: db, log: baseLog.With("repo", "CategoryVersionRepo")}
}

func (r *categoryVersionRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *categoryVersionRepo) withSchema(q *gorm.DB) *gorm.DB {
	return q.Preload("Attributes", func(db *gorm.DB) *gorm.DB {
		return db.Order("display_order ASC")
	}).Preload("Attributes.Definition")
}

func (r *categoryVersionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.CategoryVersion) (*types.CategoryVersion, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.base(tx).WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *categoryVersionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CategoryVersion, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.CategoryVersion
	if err := r.withSchema(r.base(tx).WithContext(ctx)).
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

func (r *categoryVersionRepo) GetOpenByCategoryID(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) ([]*types.CategoryVersion, error) {
	var out []*types.CategoryVersion
	if categoryID == uuid.Nil {
		return out, nil
	}
	if err := r.withSchema(r.base(tx).WithContext(ctx)).
		Where("category_id = ? AND valid_to IS NULL", categoryID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryVersionRepo) GetAtTime(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, at time.Time) ([]*types.CategoryVersion, error) {
	var out []*types.CategoryVersion
	if categoryID == uuid.Nil {
		return out, nil
	}
	if err := r.withSchema(r.base(tx).WithContext(ctx)).
		Where("category_id = ? AND valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)", categoryID, at, at).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryVersionRepo) GetLatestByCategoryID(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (*types.CategoryVersion, error) {
	if categoryID == uuid.Nil {
		return nil, nil
	}
	var out []*types.CategoryVersion
	if err := r.withSchema(r.base(tx).WithContext(ctx)).
		Where("category_id = ?", categoryID).
		Order("version_number DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *categoryVersionRepo) ListByCategoryID(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) ([]*types.CategoryVersion, error) {
	var out []*types.CategoryVersion
	if categoryID == uuid.Nil {
		return out, nil
	}
	if err := r.withSchema(r.base(tx).WithContext(ctx)).
		Where("category_id = ?", categoryID).
		Order("version_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentNameExists checks whether a live category other than
// excludeCategoryID currently carries the given name.
func (r *categoryVersionRepo) CurrentNameExists(ctx context.Context, tx *gorm.DB, name string, excludeCategoryID uuid.UUID) (bool, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false, nil
	}
	var n int64
	q := r.base(tx).WithContext(ctx).
		Model(&types.CategoryVersion{}).
		Joins("JOIN category ON category.id = category_version.category_id").
		Where("category_version.valid_to IS NULL AND lower(category_version.name) = ? AND category.deleted = false", name)
	if excludeCategoryID != uuid.Nil {
		q = q.Where("category.id <> ?", excludeCategoryID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
