package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

type CategoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Category) ([]*types.Category, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Category, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Category, error)
	ListLive(ctx context.Context, tx *gorm.DB) ([]*types.Category, error)
	ListByParentID(ctx context.Context, tx *gorm.DB, parentID *uuid.UUID, includeDeleted bool) ([]*types.Category, error)
	ListSubtree(ctx context.Context, tx *gorm.DB, treePath string) ([]*types.Category, error)
	CountLiveChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) (int64, error)
	MarkDeleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
	MarkRestored(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Category) ([]*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.Category{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *categoryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Category
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Category, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(ctx, tx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *categoryRepo) ListLive(ctx context.Context, tx *gorm.DB) ([]*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Category
	if err := t.WithContext(ctx).
		Where("deleted = false").
		Order("depth ASC, tree_path ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) ListByParentID(ctx context.Context, tx *gorm.DB, parentID *uuid.UUID, includeDeleted bool) ([]*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(ctx)
	if parentID == nil {
		q = q.Where("parent_id IS NULL")
	} else {
		q = q.Where("parent_id = ?", *parentID)
	}
	if !includeDeleted {
		q = q.Where("deleted = false")
	}
	var out []*types.Category
	if err := q.Order("tree_path ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) ListSubtree(ctx context.Context, tx *gorm.DB, treePath string) ([]*types.Category, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.Category
	if treePath == "" {
		return out, nil
	}
	if err := t.WithContext(ctx).
		Where("tree_path LIKE ?", treePath+"%").
		Order("depth ASC, tree_path ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) CountLiveChildren(ctx context.Context, tx *gorm.DB, parentID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(ctx).
		Model(&types.Category{}).
		Where("parent_id = ? AND deleted = false", parentID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *categoryRepo) MarkDeleted(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).
		Model(&types.Category{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted":    true,
			"deleted_at": at,
			"updated_at": at,
		}).Error
}

func (r *categoryRepo) MarkRestored(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	return t.WithContext(ctx).
		Model(&types.Category{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"deleted":    false,
			"deleted_at": nil,
			"updated_at": time.Now().UTC(),
		}).Error
}
