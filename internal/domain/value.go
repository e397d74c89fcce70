package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Member is one key/value pair of an object Value. Objects keep the key order
// of the JSON document they were decoded from.
type Member struct {
	Key   string
	Value Value
}

// Value is a generic JSON value used wherever a remote payload is stored
// verbatim or only partially inspected. The zero Value is null.
//
// A Value holds compact JSON text, so key order and number literals survive
// a round trip and the payload can be re-emitted exactly as it was received.
type Value struct {
	raw string
}

var errInvalidJSON = errors.New("decode json: invalid document")

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{raw: strconv.FormatBool(b)} }

// String returns a string Value.
func String(s string) Value { return Value{raw: quote(s)} }

// Number returns a number Value from a JSON number literal, e.g. "22.5".
func Number(literal string) Value { return Value{raw: literal} }

// Float returns a number Value with the shortest literal for f.
func Float(f float64) Value {
	return Number(strconv.FormatFloat(f, 'f', -1, 64))
}

// Object returns an object Value with the given members in order.
func Object(members ...Member) Value {
	var b strings.Builder
	b.WriteByte('{')
	for i, m := range members {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(m.Key))
		b.WriteByte(':')
		b.WriteString(m.Value.json())
	}
	b.WriteByte('}')
	return Value{raw: b.String()}
}

// Array returns an array Value.
func Array(items ...Value) Value {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(item.json())
	}
	b.WriteByte(']')
	return Value{raw: b.String()}
}

// fromResult wraps a gjson result, folding JSON null into the zero Value.
func fromResult(r gjson.Result) Value {
	if r.Type == gjson.Null {
		return Value{}
	}
	return Value{raw: r.Raw}
}

func (v Value) result() gjson.Result { return gjson.Parse(v.raw) }

func (v Value) json() string {
	if v.raw == "" {
		return "null"
	}
	return v.raw
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind {
	r := v.result()
	switch r.Type {
	case gjson.False, gjson.True:
		return KindBool
	case gjson.Number:
		return KindNumber
	case gjson.String:
		return KindString
	case gjson.JSON:
		if r.IsArray() {
			return KindArray
		}
		return KindObject
	default:
		return KindNull
	}
}

// IsNull reports whether v is null (including the zero Value).
func (v Value) IsNull() bool { return v.Kind() == KindNull }

// Members returns the members of an object Value in document order.
// Repeated keys are all returned.
func (v Value) Members() []Member {
	if v.Kind() != KindObject {
		return nil
	}
	var members []Member
	v.result().ForEach(func(key, value gjson.Result) bool {
		members = append(members, Member{Key: key.Str, Value: fromResult(value)})
		return true
	})
	return members
}

// Items returns the items of an array Value.
func (v Value) Items() []Value {
	if v.Kind() != KindArray {
		return nil
	}
	results := v.result().Array()
	items := make([]Value, len(results))
	for i, r := range results {
		items[i] = fromResult(r)
	}
	return items
}

// Len returns the number of members of an object or items of an array.
func (v Value) Len() int {
	switch v.Kind() {
	case KindObject, KindArray:
		n := 0
		v.result().ForEach(func(_, _ gjson.Result) bool {
			n++
			return true
		})
		return n
	default:
		return 0
	}
}

// AsString returns the contents of a string Value.
func (v Value) AsString() (string, bool) {
	r := v.result()
	if r.Type != gjson.String {
		return "", false
	}
	return r.Str, true
}

// AsBool returns the contents of a bool Value.
func (v Value) AsBool() (bool, bool) {
	r := v.result()
	if r.Type != gjson.True && r.Type != gjson.False {
		return false, false
	}
	return r.Bool(), true
}

// AsFloat parses a number Value.
func (v Value) AsFloat() (float64, bool) {
	r := v.result()
	if r.Type != gjson.Number {
		return 0, false
	}
	return r.Num, true
}

// Literal returns the number literal of a number Value.
func (v Value) Literal() (string, bool) {
	if v.Kind() != KindNumber {
		return "", false
	}
	return v.raw, true
}

// Field returns the value stored under key in an object Value.
// When a key repeats, the last occurrence wins, as with encoding/json.
func (v Value) Field(key string) (Value, bool) {
	if v.Kind() != KindObject {
		return Value{}, false
	}
	var (
		found Value
		ok    bool
	)
	v.result().ForEach(func(k, value gjson.Result) bool {
		if k.Str == key {
			found, ok = fromResult(value), true
		}
		return true
	})
	return found, ok
}

// Index returns the i-th item of an array Value.
func (v Value) Index(i int) (Value, bool) {
	if v.Kind() != KindArray || i < 0 {
		return Value{}, false
	}
	r := v.result().Get(strconv.Itoa(i))
	if !r.Exists() {
		return Value{}, false
	}
	return fromResult(r), true
}

// Get evaluates a gjson path such as "properties.observationStations" or
// "choices.0.message.content". Keys containing path syntax must be escaped;
// use Lookup for arbitrary keys.
func (v Value) Get(path string) (Value, bool) {
	r := v.result().Get(path)
	if !r.Exists() {
		return Value{}, false
	}
	return fromResult(r), true
}

// Lookup walks a path of object keys (string) and array indexes (int).
// It reports false as soon as a step is absent.
func (v Value) Lookup(path ...any) (Value, bool) {
	cur := v
	for _, step := range path {
		var ok bool
		switch s := step.(type) {
		case string:
			cur, ok = cur.Field(s)
		case int:
			cur, ok = cur.Index(s)
		default:
			return Value{}, false
		}
		if !ok {
			return Value{}, false
		}
	}
	return cur, true
}

// Text renders scalars without JSON quoting: strings as-is, numbers as their
// literal, booleans as true/false. Null renders empty; objects and arrays
// render as compact JSON.
func (v Value) Text() string {
	if s, ok := v.AsString(); ok {
		return s
	}
	return v.raw
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(v.json()), nil
}

// UnmarshalJSON implements json.Unmarshaler, preserving object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseValue decodes exactly one JSON document.
func ParseValue(data []byte) (Value, error) {
	if !gjson.ValidBytes(data) {
		return Value{}, errInvalidJSON
	}
	return fromResult(gjson.ParseBytes(pretty.Ugly(data))), nil
}

// DecodeValue decodes exactly one JSON document from r.
func DecodeValue(r io.Reader) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Value{}, fmt.Errorf("decode json: %w", err)
	}
	return ParseValue(data)
}

func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode
	return strings.TrimSuffix(buf.String(), "\n")
}
