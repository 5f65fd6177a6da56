package catalog

import (
	"fmt"
	"time"
)

// ValueKind tags the populated slot of an AttributeValue.
type ValueKind string

const (
	ValueKindText   ValueKind = "text"
	ValueKindNumber ValueKind = "number"
	ValueKindDate   ValueKind = "date"
	ValueKindGeo    ValueKind = "geo"
)

// AttributeValue is a tagged union over the value slots an ad attribute can
// hold. Exactly one slot is populated, chosen by the attribute definition's
// declared data type; construct values through the typed constructors only.
type AttributeValue struct {
	kind   ValueKind
	text   string
	number float64
	date   time.Time
	lat    float64
	lon    float64
}

func TextValue(s string) AttributeValue {
	return AttributeValue{kind: ValueKindText, text: s}
}

func NumberValue(f float64) AttributeValue {
	return AttributeValue{kind: ValueKindNumber, number: f}
}

func DateValue(t time.Time) AttributeValue {
	return AttributeValue{kind: ValueKindDate, date: t.UTC()}
}

func GeoValue(lat, lon float64) AttributeValue {
	return AttributeValue{kind: ValueKindGeo, lat: lat, lon: lon}
}

func (v AttributeValue) Kind() ValueKind { return v.kind }

func (v AttributeValue) Text() (string, bool) {
	return v.text, v.kind == ValueKindText
}

func (v AttributeValue) Number() (float64, bool) {
	return v.number, v.kind == ValueKindNumber
}

func (v AttributeValue) Date() (time.Time, bool) {
	return v.date, v.kind == ValueKindDate
}

func (v AttributeValue) Geo() (lat, lon float64, ok bool) {
	return v.lat, v.lon, v.kind == ValueKindGeo
}

func (v AttributeValue) String() string {
	switch v.kind {
	case ValueKindText:
		return v.text
	case ValueKindNumber:
		return fmt.Sprintf("%g", v.number)
	case ValueKindDate:
		return v.date.Format(time.RFC3339)
	case ValueKindGeo:
		return fmt.Sprintf("(%g,%g)", v.lat, v.lon)
	default:
		return ""
	}
}
