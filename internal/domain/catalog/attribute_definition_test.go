package catalog

import (
	"testing"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestValidationRulesMerge(t *testing.T) {
	base := ValidationRules{
		MinLength: intPtr(2),
		MaxLength: intPtr(50),
		Options:   []string{"a", "b"},
		Pattern:   "^[a-z]+$",
	}
	override := ValidationRules{
		MaxLength: intPtr(10),
		Options:   []string{"x"},
	}

	merged := base.Merge(override)
	if merged.MinLength == nil || *merged.MinLength != 2 {
		t.Errorf("base min length must survive, got %v", merged.MinLength)
	}
	if merged.MaxLength == nil || *merged.MaxLength != 10 {
		t.Errorf("override max length must win, got %v", merged.MaxLength)
	}
	if len(merged.Options) != 1 || merged.Options[0] != "x" {
		t.Errorf("override options must replace base, got %v", merged.Options)
	}
	if merged.Pattern != "^[a-z]+$" {
		t.Errorf("base pattern must survive an empty override, got %q", merged.Pattern)
	}

	// Empty override changes nothing.
	same := base.Merge(ValidationRules{})
	if same.MaxLength == nil || *same.MaxLength != 50 {
		t.Errorf("empty override must leave base untouched, got %v", same.MaxLength)
	}
}

func TestValidationRulesRoundTrip(t *testing.T) {
	rules := ValidationRules{MinValue: floatPtr(1), MaxValue: floatPtr(9)}
	raw, err := rules.MarshalJSONB()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	parsed, err := ParseValidationRules(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.MinValue == nil || *parsed.MinValue != 1 || parsed.MaxValue == nil || *parsed.MaxValue != 9 {
		t.Fatalf("round trip lost values: %+v", parsed)
	}

	empty, err := ParseValidationRules(nil)
	if err != nil {
		t.Fatalf("parse nil: %v", err)
	}
	if empty.MinValue != nil || empty.Options != nil {
		t.Fatalf("nil blob must parse to zero rules, got %+v", empty)
	}
}
