package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidSnapshot is returned when narrator input is malformed or incomplete.
var ErrInvalidSnapshot = errors.New("invalid weather snapshot")

// WeatherSnapshot summarizes one location's current conditions. Every field is
// required. Values keep the text they were supplied with so they render into
// the prompt verbatim.
type WeatherSnapshot struct {
	City        Value
	Temperature Value // °C
	FeelsLike   Value // °C
	Pressure    Value // hPa
	Humidity    Value // %
	Weather     Value // description, e.g. "light rain"
	WindSpeed   Value // m/s
	WindDeg     Value // degrees
	Visibility  Value // meters
	Clouds      Value // % coverage
}

type snapshotField struct {
	key  string
	kind Kind
	dst  func(*WeatherSnapshot) *Value
}

// snapshotFields lists the input keys in prompt order.
var snapshotFields = []snapshotField{
	{"city", KindString, func(s *WeatherSnapshot) *Value { return &s.City }},
	{"temperature", KindNumber, func(s *WeatherSnapshot) *Value { return &s.Temperature }},
	{"feels_like", KindNumber, func(s *WeatherSnapshot) *Value { return &s.FeelsLike }},
	{"pressure", KindNumber, func(s *WeatherSnapshot) *Value { return &s.Pressure }},
	{"humidity", KindNumber, func(s *WeatherSnapshot) *Value { return &s.Humidity }},
	{"weather", KindString, func(s *WeatherSnapshot) *Value { return &s.Weather }},
	{"wind_speed", KindNumber, func(s *WeatherSnapshot) *Value { return &s.WindSpeed }},
	{"wind_deg", KindNumber, func(s *WeatherSnapshot) *Value { return &s.WindDeg }},
	{"visibility", KindNumber, func(s *WeatherSnapshot) *Value { return &s.Visibility }},
	{"clouds", KindNumber, func(s *WeatherSnapshot) *Value { return &s.Clouds }},
}

// SnapshotKeys returns the required JSON keys in prompt order.
func SnapshotKeys() []string {
	keys := make([]string, len(snapshotFields))
	for i, f := range snapshotFields {
		keys[i] = f.key
	}
	return keys
}

// ParseSnapshot decodes a JSON object carrying every snapshot key.
func ParseSnapshot(data []byte) (WeatherSnapshot, error) {
	v, err := ParseValue(data)
	if err != nil {
		return WeatherSnapshot{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return SnapshotFromValue(v)
}

// SnapshotFromValue validates an already decoded snapshot object. Extra keys
// are ignored.
func SnapshotFromValue(v Value) (WeatherSnapshot, error) {
	if v.Kind() != KindObject {
		return WeatherSnapshot{}, fmt.Errorf("%w: expected a JSON object, got %s", ErrInvalidSnapshot, v.Kind())
	}

	var snap WeatherSnapshot
	for _, f := range snapshotFields {
		field, ok := v.Field(f.key)
		if !ok || field.IsNull() {
			return WeatherSnapshot{}, fmt.Errorf("%w: missing field %q", ErrInvalidSnapshot, f.key)
		}
		if field.Kind() != f.kind {
			return WeatherSnapshot{}, fmt.Errorf("%w: field %q must be a %s, got %s", ErrInvalidSnapshot, f.key, f.kind, field.Kind())
		}
		*f.dst(&snap) = field
	}
	return snap, nil
}

// MarshalJSON re-emits the snapshot with its input keys.
func (s WeatherSnapshot) MarshalJSON() ([]byte, error) {
	members := make([]Member, len(snapshotFields))
	for i, f := range snapshotFields {
		members[i] = Member{Key: f.key, Value: *f.dst(&s)}
	}
	return Object(members...).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler with the same validation as ParseSnapshot.
func (s *WeatherSnapshot) UnmarshalJSON(data []byte) error {
	snap, err := ParseSnapshot(data)
	if err != nil {
		return err
	}
	*s = snap
	return nil
}
