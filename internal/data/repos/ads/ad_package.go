package ads

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type AdPackageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.AdPackage) (*types.AdPackage, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AdPackage, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.AdPackage, error)
	List(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*types.AdPackage, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error
}

type adPackageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdPackageRepo(db *gorm.DB, baseLog *logger.Logger) AdPackageRepo {
	return &adPackageRepo{db: db, log: baseLog.With("repo", "AdPackageRepo")}
}

func (r *adPackageRepo) base(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *adPackageRepo) Create(ctx context.Context, tx *gorm.DB, row *types.AdPackage) (*types.AdPackage, error) {
	if row == nil {
		return nil, nil
	}
	if err := r.base(tx).WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *adPackageRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AdPackage, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out []*types.AdPackage
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

func (r *adPackageRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.AdPackage, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var out []*types.AdPackage
	if err := r.base(tx).WithContext(ctx).
		Where("lower(name) = ?", strings.ToLower(name)).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *adPackageRepo) List(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*types.AdPackage, error) {
	var out []*types.AdPackage
	q := r.base(tx).WithContext(ctx).Order("price ASC")
	if activeOnly {
		q = q.Where("active = true")
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *adPackageRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	if id == uuid.Nil || len(fields) == 0 {
		return nil
	}
	return r.base(tx).WithContext(ctx).
		Model(&types.AdPackage{}).
		Where("id = ?", id).
		Updates(fields).Error
}
