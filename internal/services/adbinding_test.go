package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	types "github.com/adverto/adboard-backend/internal/domain"
	"github.com/adverto/adboard-backend/internal/domain/aggregates"
	"github.com/adverto/adboard-backend/internal/domain/catalog"
	"github.com/adverto/adboard-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func intP(v int) *int           { return &v }
func floatP(v float64) *float64 { return &v }

func schemaEntry(t *testing.T, def *types.AttributeDefinition, required bool, defaultValue string, override *types.ValidationRules) types.CategoryVersionAttribute {
	t.Helper()
	entry := types.CategoryVersionAttribute{
		ID:                    uuid.New(),
		AttributeDefinitionID: def.ID,
		Definition:            def,
		Required:              required,
		DefaultValue:          defaultValue,
	}
	if override != nil {
		raw, err := override.MarshalJSONB()
		if err != nil {
			t.Fatalf("marshal override: %v", err)
		}
		entry.RulesOverride = raw
	}
	return entry
}

func definition(t *testing.T, name string, dataType types.DataType, rules *types.ValidationRules) *types.AttributeDefinition {
	t.Helper()
	def := &types.AttributeDefinition{ID: uuid.New(), Name: name, DisplayName: name, DataType: dataType}
	if rules != nil {
		raw, err := rules.MarshalJSONB()
		if err != nil {
			t.Fatalf("marshal rules: %v", err)
		}
		def.ValidationRules = raw
	}
	return def
}

func TestValidateAndBuildValuesHappyPath(t *testing.T) {
	svc := NewAdBindingService(testLogger(t), nil)

	brand := definition(t, "brand", types.DataTypeText, &types.ValidationRules{MinLength: intP(2), MaxLength: intP(20)})
	mileage := definition(t, "mileage", types.DataTypeNumber, &types.ValidationRules{MinValue: floatP(0)})
	fuel := definition(t, "fuel", types.DataTypeSelect, &types.ValidationRules{Options: []string{"petrol", "diesel"}})
	extras := definition(t, "extras", types.DataTypeMultiSelect, &types.ValidationRules{Options: []string{"abs", "ac", "gps"}})
	firstReg := definition(t, "first_registration", types.DataTypeDate, nil)
	damaged := definition(t, "damaged", types.DataTypeBoolean, nil)
	pickup := definition(t, "pickup_point", types.DataTypeLocation, nil)

	version := &types.CategoryVersion{
		ID: uuid.New(),
		Attributes: []types.CategoryVersionAttribute{
			schemaEntry(t, brand, true, "", nil),
			schemaEntry(t, mileage, true, "", nil),
			schemaEntry(t, fuel, false, "", nil),
			schemaEntry(t, extras, false, "", nil),
			schemaEntry(t, firstReg, false, "", nil),
			schemaEntry(t, damaged, false, "", nil),
			schemaEntry(t, pickup, false, "", nil),
		},
	}

	rows, err := svc.ValidateAndBuildValues(version, []AttributeValueInput{
		{AttributeDefinitionID: brand.ID, Value: "  Volvo "},
		{AttributeDefinitionID: mileage.ID, Value: 125000},
		{AttributeDefinitionID: fuel.ID, Value: "diesel"},
		{AttributeDefinitionID: extras.ID, Value: []any{"abs", "gps"}},
		{AttributeDefinitionID: firstReg.ID, Value: "2019-06-01"},
		{AttributeDefinitionID: damaged.ID, Value: false},
		{AttributeDefinitionID: pickup.ID, Value: map[string]any{"lat": 59.33, "lon": 18.07}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 7 {
		t.Fatalf("expected 7 rows, got %d", len(rows))
	}

	byDef := make(map[uuid.UUID]*types.AdAttribute, len(rows))
	for _, row := range rows {
		row := row
		byDef[row.AttributeDefinitionID] = &row
	}
	if v, ok := byDef[brand.ID].Value(); !ok {
		t.Fatal("brand row lost its value")
	} else if s, _ := v.Text(); s != "Volvo" {
		t.Errorf("text value must be trimmed, got %q", s)
	}
	if v, _ := byDef[mileage.ID].Value(); v.Kind() != catalog.ValueKindNumber {
		t.Errorf("mileage stored as %v", v.Kind())
	}
	if v, _ := byDef[extras.ID].Value(); v.Kind() != catalog.ValueKindText {
		t.Error("multi-select is stored as an encoded text value")
	} else if s, _ := v.Text(); !strings.Contains(s, "abs") {
		t.Errorf("encoded selection lost items: %q", s)
	}
	if v, _ := byDef[pickup.ID].Value(); v.Kind() != catalog.ValueKindGeo {
		t.Error("location stored in the geo slot")
	}
}

func TestValidateAndBuildValuesCollectsAllProblems(t *testing.T) {
	svc := NewAdBindingService(testLogger(t), nil)

	brand := definition(t, "brand", types.DataTypeText, &types.ValidationRules{MinLength: intP(3)})
	mileage := definition(t, "mileage", types.DataTypeNumber, &types.ValidationRules{MinValue: floatP(0), MaxValue: floatP(1000)})

	version := &types.CategoryVersion{
		ID: uuid.New(),
		Attributes: []types.CategoryVersionAttribute{
			schemaEntry(t, brand, true, "", nil),
			schemaEntry(t, mileage, true, "", nil),
		},
	}

	_, err := svc.ValidateAndBuildValues(version, []AttributeValueInput{
		{AttributeDefinitionID: brand.ID, Value: "ab"},
		{AttributeDefinitionID: mileage.ID, Value: 5000},
		{AttributeDefinitionID: uuid.New(), Value: "stray"},
	})
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !aggregates.IsCode(err, aggregates.CodeValidation) {
		t.Fatalf("expected validation code, got %s", aggregates.CodeOf(err))
	}
	msg := err.Error()
	for _, want := range []string{"minimum length", "above maximum", "not part of the category schema"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error must mention %q, got %q", want, msg)
		}
	}
}

func TestValidateAndBuildValuesDefaultsAndRequired(t *testing.T) {
	svc := NewAdBindingService(testLogger(t), nil)

	color := definition(t, "color", types.DataTypeText, nil)
	doors := definition(t, "doors", types.DataTypeNumber, nil)
	vin := definition(t, "vin", types.DataTypeText, nil)

	version := &types.CategoryVersion{
		ID: uuid.New(),
		Attributes: []types.CategoryVersionAttribute{
			schemaEntry(t, color, true, "black", nil),
			schemaEntry(t, doors, false, "", nil),
			schemaEntry(t, vin, true, "", nil),
		},
	}

	// color falls back to its default, doors is optional and absent, vin is
	// required with no default.
	_, err := svc.ValidateAndBuildValues(version, nil)
	if err == nil {
		t.Fatal("expected missing required attribute to fail")
	}
	if !strings.Contains(err.Error(), "vin") {
		t.Errorf("error must name the missing attribute, got %q", err.Error())
	}
	if strings.Contains(err.Error(), "color") {
		t.Errorf("defaulted attribute must not be reported, got %q", err.Error())
	}

	rows, err := svc.ValidateAndBuildValues(version, []AttributeValueInput{
		{AttributeDefinitionID: vin.ID, Value: "WVWZZZ"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected color default + vin, got %d rows", len(rows))
	}
}

func TestValidateAndBuildValuesRulesOverride(t *testing.T) {
	svc := NewAdBindingService(testLogger(t), nil)

	size := definition(t, "size", types.DataTypeNumber, &types.ValidationRules{MaxValue: floatP(100)})
	version := &types.CategoryVersion{
		ID: uuid.New(),
		Attributes: []types.CategoryVersionAttribute{
			schemaEntry(t, size, true, "", &types.ValidationRules{MaxValue: floatP(10)}),
		},
	}

	if _, err := svc.ValidateAndBuildValues(version, []AttributeValueInput{
		{AttributeDefinitionID: size.ID, Value: 50},
	}); err == nil {
		t.Fatal("override maximum must win over the definition's rules")
	}
	if _, err := svc.ValidateAndBuildValues(version, []AttributeValueInput{
		{AttributeDefinitionID: size.ID, Value: 5},
	}); err != nil {
		t.Fatalf("value inside the override range must pass: %v", err)
	}
}

func TestValidateAndBuildValuesRejectsDuplicates(t *testing.T) {
	svc := NewAdBindingService(testLogger(t), nil)

	brand := definition(t, "brand", types.DataTypeText, nil)
	version := &types.CategoryVersion{
		ID:         uuid.New(),
		Attributes: []types.CategoryVersionAttribute{schemaEntry(t, brand, false, "", nil)},
	}

	_, err := svc.ValidateAndBuildValues(version, []AttributeValueInput{
		{AttributeDefinitionID: brand.ID, Value: "a"},
		{AttributeDefinitionID: brand.ID, Value: "b"},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestCoerceAndValidateEdges(t *testing.T) {
	cases := []struct {
		name     string
		dataType types.DataType
		rules    types.ValidationRules
		raw      any
		wantErr  bool
	}{
		{"bool from string", types.DataTypeBoolean, types.ValidationRules{}, "true", false},
		{"bool garbage", types.DataTypeBoolean, types.ValidationRules{}, "maybe", true},
		{"number from string", types.DataTypeNumber, types.ValidationRules{}, "12.5", false},
		{"number garbage", types.DataTypeNumber, types.ValidationRules{}, "twelve", true},
		{"date rfc3339", types.DataTypeDate, types.ValidationRules{}, "2024-01-02T10:00:00Z", false},
		{"date garbage", types.DataTypeDate, types.ValidationRules{}, "01/02/2024", true},
		{"select unknown option", types.DataTypeSelect, types.ValidationRules{Options: []string{"a"}}, "b", true},
		{"multi-select duplicate", types.DataTypeMultiSelect, types.ValidationRules{Options: []string{"a", "b"}}, []any{"a", "a"}, true},
		{"multi-select empty", types.DataTypeMultiSelect, types.ValidationRules{Options: []string{"a"}}, []any{}, true},
		{"location lat over range", types.DataTypeLocation, types.ValidationRules{}, map[string]any{"lat": 91.0, "lon": 0.0}, true},
		{"location lon under range", types.DataTypeLocation, types.ValidationRules{}, map[string]any{"lat": 0.0, "lon": -181.0}, true},
		{"location alt keys", types.DataTypeLocation, types.ValidationRules{}, map[string]any{"latitude": 45.0, "longitude": 9.0}, false},
		{"text pattern mismatch", types.DataTypeText, types.ValidationRules{Pattern: "^[0-9]+$"}, "abc", true},
		{"text pattern match", types.DataTypeText, types.ValidationRules{Pattern: "^[0-9]+$"}, "123", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := &types.AttributeDefinition{ID: uuid.New(), Name: tc.name, DataType: tc.dataType}
			_, verr := coerceAndValidate(def, tc.rules, tc.raw)
			if tc.wantErr && verr == "" {
				t.Errorf("expected a violation for %v", tc.raw)
			}
			if !tc.wantErr && verr != "" {
				t.Errorf("unexpected violation: %s", verr)
			}
		})
	}
}
