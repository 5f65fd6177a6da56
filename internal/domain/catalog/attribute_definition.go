package catalog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DataType enumerates the attribute value kinds the registry supports.
type DataType string

const (
	DataTypeText        DataType = "TEXT"
	DataTypeNumber      DataType = "NUMBER"
	DataTypeDate        DataType = "DATE"
	DataTypeBoolean     DataType = "BOOLEAN"
	DataTypeSelect      DataType = "SELECT"
	DataTypeMultiSelect DataType = "MULTI_SELECT"
	DataTypeLocation    DataType = "LOCATION"
)

func (t DataType) Valid() bool {
	switch t {
	case DataTypeText, DataTypeNumber, DataTypeDate, DataTypeBoolean,
		DataTypeSelect, DataTypeMultiSelect, DataTypeLocation:
		return true
	}
	return false
}

// ValidationRules is the type-specific rules blob stored as JSONB. Fields are
// pointers so absent rules impose no constraint.
type ValidationRules struct {
	MinLength *int       `json:"min_length,omitempty"`
	MaxLength *int       `json:"max_length,omitempty"`
	MinValue  *float64   `json:"min_value,omitempty"`
	MaxValue  *float64   `json:"max_value,omitempty"`
	Options   []string   `json:"options,omitempty"`
	MinDate   *time.Time `json:"min_date,omitempty"`
	MaxDate   *time.Time `json:"max_date,omitempty"`
	Pattern   string     `json:"pattern,omitempty"`
}

func (r ValidationRules) MarshalJSONB() (datatypes.JSON, error) {
	raw, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func ParseValidationRules(raw datatypes.JSON) (ValidationRules, error) {
	var rules ValidationRules
	if len(raw) == 0 {
		return rules, nil
	}
	if err := json.Unmarshal(raw, &rules); err != nil {
		return rules, err
	}
	return rules, nil
}

// Merge overlays non-empty override fields on top of the base rules. Used when
// a category version carries a per-schema rules override.
func (r ValidationRules) Merge(override ValidationRules) ValidationRules {
	out := r
	if override.MinLength != nil {
		out.MinLength = override.MinLength
	}
	if override.MaxLength != nil {
		out.MaxLength = override.MaxLength
	}
	if override.MinValue != nil {
		out.MinValue = override.MinValue
	}
	if override.MaxValue != nil {
		out.MaxValue = override.MaxValue
	}
	if len(override.Options) > 0 {
		out.Options = override.Options
	}
	if override.MinDate != nil {
		out.MinDate = override.MinDate
	}
	if override.MaxDate != nil {
		out.MaxDate = override.MaxDate
	}
	if override.Pattern != "" {
		out.Pattern = override.Pattern
	}
	return out
}

// AttributeDefinition is a globally registered, typed field schema. The name is
// a stable key, unique case-insensitively; DataType is immutable after creation
// (no mutation path exposes it).
type AttributeDefinition struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name              string         `gorm:"uniqueIndex;not null;column:name" json:"name"`
	DisplayName       string         `gorm:"not null;column:display_name" json:"display_name"`
	DataType          DataType       `gorm:"not null;column:data_type" json:"data_type"`
	Searchable        bool           `gorm:"not null;default:false;column:searchable" json:"searchable"`
	RequiredByDefault bool           `gorm:"not null;default:false;column:required_by_default" json:"required_by_default"`
	ValidationRules   datatypes.JSON `gorm:"type:jsonb;column:validation_rules" json:"validation_rules,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (AttributeDefinition) TableName() string { return "attribute_definition" }

func (d *AttributeDefinition) Rules() (ValidationRules, error) {
	return ParseValidationRules(d.ValidationRules)
}
