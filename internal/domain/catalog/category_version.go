package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CategoryStatus is the lifecycle status carried by a version snapshot.
type CategoryStatus string

const (
	CategoryStatusActive   CategoryStatus = "ACTIVE"
	CategoryStatusInactive CategoryStatus = "INACTIVE"
	CategoryStatusDeleted  CategoryStatus = "DELETED"
)

func (s CategoryStatus) Valid() bool {
	switch s {
	case CategoryStatusActive, CategoryStatusInactive, CategoryStatusDeleted:
		return true
	}
	return false
}

// CategoryVersion is an immutable, time-bounded snapshot of a category's
// name/description/status/attribute schema. ValidTo == nil marks the single
// currently-open version of a category; closed versions are never mutated.
//
// Invariants (enforced in the version service, backed by the partial unique
// index created in db.AutoMigrateAll):
//   - at most one open version per category
//   - [ValidFrom, ValidTo) windows of one category never overlap
//   - VersionNumber starts at 1 and increases without gaps
type CategoryVersion struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CategoryID uuid.UUID `gorm:"type:uuid;not null;column:category_id;index;index:idx_category_version_number,unique,priority:1" json:"category_id"`
	Category   *Category `gorm:"constraint:OnDelete:CASCADE;foreignKey:CategoryID;references:ID" json:"category,omitempty"`

	VersionNumber int `gorm:"not null;column:version_number;index:idx_category_version_number,unique,priority:2" json:"version_number"`

	ValidFrom time.Time  `gorm:"not null;column:valid_from;index" json:"valid_from"`
	ValidTo   *time.Time `gorm:"column:valid_to;index" json:"valid_to,omitempty"`

	Name        string         `gorm:"not null;column:name;index" json:"name"`
	Description string         `gorm:"type:text;column:description" json:"description,omitempty"`
	Status      CategoryStatus `gorm:"not null;default:'ACTIVE';column:status" json:"status"`

	Attributes []CategoryVersionAttribute `gorm:"foreignKey:CategoryVersionID;references:ID" json:"attributes"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (CategoryVersion) TableName() string { return "category_version" }

// IsOpen reports whether this is the category's current version.
func (v *CategoryVersion) IsOpen() bool { return v != nil && v.ValidTo == nil }

// Covers reports whether t falls inside [ValidFrom, ValidTo).
func (v *CategoryVersion) Covers(t time.Time) bool {
	if v == nil || t.Before(v.ValidFrom) {
		return false
	}
	return v.ValidTo == nil || t.Before(*v.ValidTo)
}

// AttributeEntry returns the schema entry for the given definition id.
func (v *CategoryVersion) AttributeEntry(defID uuid.UUID) *CategoryVersionAttribute {
	if v == nil {
		return nil
	}
	for i := range v.Attributes {
		if v.Attributes[i].AttributeDefinitionID == defID {
			return &v.Attributes[i]
		}
	}
	return nil
}

// CategoryVersionAttribute is one schema entry snapshotted into a version at
// creation time. Entries are never mutated after the version is created; schema
// changes always go through a new version.
type CategoryVersionAttribute struct {
	ID                uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CategoryVersionID uuid.UUID `gorm:"type:uuid;not null;column:category_version_id;index" json:"category_version_id"`

	AttributeDefinitionID uuid.UUID            `gorm:"type:uuid;not null;column:attribute_definition_id;index" json:"attribute_definition_id"`
	Definition            *AttributeDefinition `gorm:"foreignKey:AttributeDefinitionID;references:ID" json:"definition,omitempty"`

	Required      bool           `gorm:"not null;default:false;column:required" json:"required"`
	DisplayOrder  int            `gorm:"not null;default:0;column:display_order" json:"display_order"`
	DefaultValue  string         `gorm:"column:default_value" json:"default_value,omitempty"`
	RulesOverride datatypes.JSON `gorm:"type:jsonb;column:rules_override" json:"rules_override,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (CategoryVersionAttribute) TableName() string { return "category_version_attribute" }

// EffectiveRules merges the definition's base rules with this entry's override.
func (a *CategoryVersionAttribute) EffectiveRules() (ValidationRules, error) {
	var base ValidationRules
	if a.Definition != nil {
		var err error
		base, err = a.Definition.Rules()
		if err != nil {
			return base, err
		}
	}
	override, err := ParseValidationRules(a.RulesOverride)
	if err != nil {
		return base, err
	}
	return base.Merge(override), nil
}
