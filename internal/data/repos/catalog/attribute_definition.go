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

type AttributeDefinitionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.AttributeDefinition) ([]*types.AttributeDefinition, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.AttributeDefinition, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AttributeDefinition, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.AttributeDefinition, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.AttributeDefinition, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	CountReferences(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error)
	FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error
}

type attributeDefinitionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttributeDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) AttributeDefinitionRepo {
	return &attributeDefinitionRepo{db: db, log: baseLog.With("repo", "AttributeDefinitionRepo")}
}

func (r *attributeDefinitionRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.AttributeDefinition) ([]*types.AttributeDefinition, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.AttributeDefinition{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *attributeDefinitionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.AttributeDefinition, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.AttributeDefinition
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *attributeDefinitionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AttributeDefinition, error) {
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

func (r *attributeDefinitionRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.AttributeDefinition, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, nil
	}
	var out []*types.AttributeDefinition
	if err := t.WithContext(ctx).Where("lower(name) = ?", name).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *attributeDefinitionRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.AttributeDefinition, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.AttributeDefinition
	if err := t.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *attributeDefinitionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	// Data type is immutable by contract; strip it before it reaches the store.
	delete(updates, "data_type")
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(ctx).
		Model(&types.AttributeDefinition{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CountReferences counts rows in version schemas and ad values that point at
// this definition. A definition with references must never be hard-deleted.
func (r *attributeDefinitionRepo) CountReferences(ctx context.Context, tx *gorm.DB, id uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if id == uuid.Nil {
		return 0, nil
	}
	var versionRefs int64
	if err := t.WithContext(ctx).
		Model(&types.CategoryVersionAttribute{}).
		Where("attribute_definition_id = ?", id).
		Count(&versionRefs).Error; err != nil {
		return 0, err
	}
	var valueRefs int64
	if err := t.WithContext(ctx).
		Model(&types.AdAttribute{}).
		Where("attribute_definition_id = ?", id).
		Count(&valueRefs).Error; err != nil {
		return 0, err
	}
	return versionRefs + valueRefs, nil
}

func (r *attributeDefinitionRepo) FullDeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(ctx).Unscoped().Where("id IN ?", ids).Delete(&types.AttributeDefinition{}).Error
}
