package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/ads"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/domain/catalog"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

// AttributeValueInput is one raw attribute value as submitted by a client.
// The value is coerced and validated against the bound version's schema.
type AttributeValueInput struct {
	AttributeDefinitionID uuid.UUID `json:"attribute_definition_id"`
	Value                 any       `json:"value"`
}

// AdBindingService freezes the category version an ad is bound to and turns
// raw attribute values into validated rows. Validation always runs against the
// ad's bound version, never against the category's current one.
type AdBindingService interface {
	// BindCurrentVersion resolves the version a new ad must be frozen to.
	BindCurrentVersion(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (*types.CategoryVersion, error)

	// ValidateAndBuildValues checks every submitted value against the version
	// schema and materializes the attribute rows. All violations are collected
	// before failing so the client sees the full list at once.
	ValidateAndBuildValues(version *types.CategoryVersion, inputs []AttributeValueInput) ([]types.AdAttribute, error)
}

type adBindingService struct {
	log            *logger.Logger
	versionService CategoryVersionService
}

func NewAdBindingService(baseLog *logger.Logger, versionService CategoryVersionService) AdBindingService {
	return &adBindingService{
		log:            baseLog.With("service", "AdBindingService"),
		versionService: versionService,
	}
}

func (s *adBindingService) BindCurrentVersion(ctx context.Context, tx *gorm.DB, categoryID uuid.UUID) (*types.CategoryVersion, error) {
	const op = "AdBindingService.BindCurrentVersion"
	version, err := s.versionService.GetCurrentVersion(ctx, tx, categoryID)
	if err != nil {
		return nil, err
	}
	if version.Status != types.CategoryStatusActive {
		return nil, aggregates.NewError(aggregates.CodePreconditionFailed, op,
			"category does not accept new advertisements", nil)
	}
	return version, nil
}

func (s *adBindingService) ValidateAndBuildValues(version *types.CategoryVersion, inputs []AttributeValueInput) ([]types.AdAttribute, error) {
	const op = "AdBindingService.ValidateAndBuildValues"
	if version == nil {
		return nil, aggregates.ValidationError(op, "category version required")
	}

	byDef := make(map[uuid.UUID]AttributeValueInput, len(inputs))
	var problems []string
	for _, in := range inputs {
		if in.AttributeDefinitionID == uuid.Nil {
			problems = append(problems, "attribute value without a definition id")
			continue
		}
		if _, dup := byDef[in.AttributeDefinitionID]; dup {
			problems = append(problems, "duplicate value for attribute "+in.AttributeDefinitionID.String())
			continue
		}
		if version.AttributeEntry(in.AttributeDefinitionID) == nil {
			problems = append(problems, "attribute "+in.AttributeDefinitionID.String()+" is not part of the category schema")
			continue
		}
		byDef[in.AttributeDefinitionID] = in
	}

	var rows []types.AdAttribute
	for i := range version.Attributes {
		entry := &version.Attributes[i]
		def := entry.Definition
		if def == nil {
			problems = append(problems, "schema entry "+entry.AttributeDefinitionID.String()+" has no loaded definition")
			continue
		}

		in, provided := byDef[entry.AttributeDefinitionID]
		raw := in.Value
		if !provided || raw == nil {
			if entry.DefaultValue != "" {
				raw = entry.DefaultValue
			} else if entry.Required {
				problems = append(problems, "required attribute "+def.Name+" is missing")
				continue
			} else {
				continue
			}
		}

		rules, err := entry.EffectiveRules()
		if err != nil {
			problems = append(problems, "attribute "+def.Name+" has unreadable validation rules")
			continue
		}

		value, verr := coerceAndValidate(def, rules, raw)
		if verr != "" {
			problems = append(problems, "attribute "+def.Name+": "+verr)
			continue
		}
		// Advertisement id is stamped by the repository when the set is written.
		rows = append(rows, ads.NewAdAttribute(uuid.Nil, entry.AttributeDefinitionID, value))
	}

	if len(problems) > 0 {
		return nil, aggregates.ValidationError(op, strings.Join(problems, "; "))
	}
	return rows, nil
}

// coerceAndValidate maps a raw client value onto the typed union and applies
// the effective rules. The returned string is empty on success, otherwise a
// human-readable violation.
func coerceAndValidate(def *types.AttributeDefinition, rules types.ValidationRules, raw any) (catalog.AttributeValue, string) {
	switch def.DataType {
	case types.DataTypeText:
		s, ok := asString(raw)
		if !ok {
			return catalog.AttributeValue{}, "expected a text value"
		}
		if rules.MinLength != nil && len([]rune(s)) < *rules.MinLength {
			return catalog.AttributeValue{}, fmt.Sprintf("shorter than minimum length %d", *rules.MinLength)
		}
		if rules.MaxLength != nil && len([]rune(s)) > *rules.MaxLength {
			return catalog.AttributeValue{}, fmt.Sprintf("longer than maximum length %d", *rules.MaxLength)
		}
		if rules.Pattern != "" {
			re, err := regexp.Compile(rules.Pattern)
			if err != nil {
				return catalog.AttributeValue{}, "pattern rule is not a valid regular expression"
			}
			if !re.MatchString(s) {
				return catalog.AttributeValue{}, "does not match the required pattern"
			}
		}
		return catalog.TextValue(s), ""

	case types.DataTypeNumber:
		f, ok := asNumber(raw)
		if !ok {
			return catalog.AttributeValue{}, "expected a numeric value"
		}
		if rules.MinValue != nil && f < *rules.MinValue {
			return catalog.AttributeValue{}, fmt.Sprintf("below minimum %g", *rules.MinValue)
		}
		if rules.MaxValue != nil && f > *rules.MaxValue {
			return catalog.AttributeValue{}, fmt.Sprintf("above maximum %g", *rules.MaxValue)
		}
		return catalog.NumberValue(f), ""

	case types.DataTypeDate:
		t, ok := asDate(raw)
		if !ok {
			return catalog.AttributeValue{}, "expected an RFC 3339 date"
		}
		if rules.MinDate != nil && t.Before(*rules.MinDate) {
			return catalog.AttributeValue{}, "before the earliest allowed date"
		}
		if rules.MaxDate != nil && t.After(*rules.MaxDate) {
			return catalog.AttributeValue{}, "after the latest allowed date"
		}
		return catalog.DateValue(t), ""

	case types.DataTypeBoolean:
		b, ok := asBool(raw)
		if !ok {
			return catalog.AttributeValue{}, "expected a boolean value"
		}
		return catalog.TextValue(strconv.FormatBool(b)), ""

	case types.DataTypeSelect:
		s, ok := asString(raw)
		if !ok {
			return catalog.AttributeValue{}, "expected one of the configured options"
		}
		if !containsOption(rules.Options, s) {
			return catalog.AttributeValue{}, "value is not one of the configured options"
		}
		return catalog.TextValue(s), ""

	case types.DataTypeMultiSelect:
		items, ok := asStringSlice(raw)
		if !ok || len(items) == 0 {
			return catalog.AttributeValue{}, "expected a non-empty list of options"
		}
		seen := make(map[string]bool, len(items))
		for _, item := range items {
			if !containsOption(rules.Options, item) {
				return catalog.AttributeValue{}, "value " + item + " is not one of the configured options"
			}
			if seen[item] {
				return catalog.AttributeValue{}, "option " + item + " listed more than once"
			}
			seen[item] = true
		}
		encoded, err := json.Marshal(items)
		if err != nil {
			return catalog.AttributeValue{}, "could not encode the selection"
		}
		return catalog.TextValue(string(encoded)), ""

	case types.DataTypeLocation:
		lat, lon, ok := asLatLon(raw)
		if !ok {
			return catalog.AttributeValue{}, "expected an object with lat and lon"
		}
		if lat < -90 || lat > 90 {
			return catalog.AttributeValue{}, "latitude out of range"
		}
		if lon < -180 || lon > 180 {
			return catalog.AttributeValue{}, "longitude out of range"
		}
		return catalog.GeoValue(lat, lon), ""
	}
	return catalog.AttributeValue{}, "unsupported data type"
}

func asString(raw any) (string, bool) {
	s, ok := raw.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func asNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}
	return 0, false
}

func asDate(raw any) (time.Time, bool) {
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func asBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}
	return false, false
}

func asStringSlice(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, strings.TrimSpace(s))
		}
		return out, true
	case string:
		// Accept a pre-encoded JSON array, the shape the value is stored in.
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, false
		}
		return out, true
	}
	return nil, false
}

func asLatLon(raw any) (lat, lon float64, ok bool) {
	m, isMap := raw.(map[string]any)
	if !isMap {
		return 0, 0, false
	}
	latRaw, hasLat := m["lat"]
	if !hasLat {
		latRaw, hasLat = m["latitude"]
	}
	lonRaw, hasLon := m["lon"]
	if !hasLon {
		lonRaw, hasLon = m["lng"]
	}
	if !hasLon {
		lonRaw, hasLon = m["longitude"]
	}
	if !hasLat || !hasLon {
		return 0, 0, false
	}
	lat, okLat := asNumber(latRaw)
	lon, okLon := asNumber(lonRaw)
	return lat, lon, okLat && okLon
}

func containsOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
