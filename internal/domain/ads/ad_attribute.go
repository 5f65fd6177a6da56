package ads

import (
	"time"

	"github.com/google/uuid"

	"github.com/adverto/adboard-backend/internal/domain/catalog"
)

// AdAttribute is one typed attribute value of an advertisement, keyed by
// (advertisement, attribute definition). Exactly one value slot is populated,
// matching the definition's declared data type; rows are only built from a
// validated catalog.AttributeValue, never assembled by hand.
type AdAttribute struct {
	AdvertisementID       uuid.UUID `gorm:"type:uuid;not null;column:advertisement_id;primaryKey" json:"advertisement_id"`
	AttributeDefinitionID uuid.UUID `gorm:"type:uuid;not null;column:attribute_definition_id;primaryKey" json:"attribute_definition_id"`

	Definition *catalog.AttributeDefinition `gorm:"foreignKey:AttributeDefinitionID;references:ID" json:"definition,omitempty"`

	TextValue    *string    `gorm:"column:text_value" json:"text_value,omitempty"`
	NumericValue *float64   `gorm:"column:numeric_value" json:"numeric_value,omitempty"`
	DateValue    *time.Time `gorm:"column:date_value" json:"date_value,omitempty"`
	GeoLat       *float64   `gorm:"column:geo_lat" json:"geo_lat,omitempty"`
	GeoLon       *float64   `gorm:"column:geo_lon" json:"geo_lon,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (AdAttribute) TableName() string { return "ad_attribute" }

// NewAdAttribute maps a validated tagged-union value into a row.
func NewAdAttribute(adID, defID uuid.UUID, value catalog.AttributeValue) AdAttribute {
	row := AdAttribute{
		AdvertisementID:       adID,
		AttributeDefinitionID: defID,
	}
	switch value.Kind() {
	case catalog.ValueKindText:
		s, _ := value.Text()
		row.TextValue = &s
	case catalog.ValueKindNumber:
		f, _ := value.Number()
		row.NumericValue = &f
	case catalog.ValueKindDate:
		t, _ := value.Date()
		row.DateValue = &t
	case catalog.ValueKindGeo:
		lat, lon, _ := value.Geo()
		row.GeoLat = &lat
		row.GeoLon = &lon
	}
	return row
}

// Value reconstructs the tagged union from the populated slot.
func (a *AdAttribute) Value() (catalog.AttributeValue, bool) {
	switch {
	case a.TextValue != nil:
		return catalog.TextValue(*a.TextValue), true
	case a.NumericValue != nil:
		return catalog.NumberValue(*a.NumericValue), true
	case a.DateValue != nil:
		return catalog.DateValue(*a.DateValue), true
	case a.GeoLat != nil && a.GeoLon != nil:
		return catalog.GeoValue(*a.GeoLat, *a.GeoLon), true
	default:
		return catalog.AttributeValue{}, false
	}
}
