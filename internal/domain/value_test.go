package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue_PreservesKeyOrderAndLiterals(t *testing.T) {
	raw := `{"timestamp":"2020-03-07T00:51:00+00:00","temperature":{"unitCode":"wmoUnit:degC","value":21.10},"windSpeed":{"value":null},"presentWeather":[],"cloudLayers":[{"base":{"value":1220}}]}`

	v, err := ParseValue([]byte(raw))
	require.NoError(t, err)

	keys := make([]string, 0, v.Len())
	for _, m := range v.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"timestamp", "temperature", "windSpeed", "presentWeather", "cloudLayers"}, keys)

	temp, ok := v.Lookup("temperature", "value")
	require.True(t, ok)
	lit, _ := temp.Literal()
	assert.Equal(t, "21.10", lit, "number literal is kept verbatim")

	base, ok := v.Lookup("cloudLayers", 0, "base", "value")
	require.True(t, ok)
	f, ok := base.AsFloat()
	require.True(t, ok)
	assert.InDelta(t, 1220.0, f, 0)

	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, raw, string(out))
}

func TestParseValue_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"trailing data", `{"a":1} {"b":2}`},
		{"unterminated object", `{"a":1`},
		{"bare word", `nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseValue([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestValue_Text(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"null", Null(), ""},
		{"string", String("light rain"), "light rain"},
		{"number", Number("1012"), "1012"},
		{"float", Float(22.5), "22.5"},
		{"bool", Bool(true), "true"},
		{"object", Object(Member{Key: "a", Value: Number("1")}), `{"a":1}`},
		{"array", Array(String("x"), Null()), `["x",null]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.value.Text())
		})
	}
}

func TestValue_FieldLastKeyWins(t *testing.T) {
	v, err := ParseValue([]byte(`{"k":1,"k":2}`))
	require.NoError(t, err)

	got, ok := v.Field("k")
	require.True(t, ok)
	assert.Equal(t, "2", got.Text())
}

func TestValue_LookupMissingSteps(t *testing.T) {
	v := Object(Member{Key: "features", Value: Array()})

	_, ok := v.Lookup("features", 0)
	assert.False(t, ok)
	_, ok = v.Lookup("nope")
	assert.False(t, ok)
	_, ok = v.Lookup("features", 1.5)
	assert.False(t, ok)
}

func TestValue_MarshalDoesNotEscapeHTML(t *testing.T) {
	out, err := String("<5 km & falling>").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"<5 km & falling>"`, string(out))
}

func TestValue_EmbedsInStructs(t *testing.T) {
	type envelope struct {
		Data Value `json:"data"`
	}

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"z":1,"a":[true,null]}}`), &env))
	assert.Equal(t, KindObject, env.Data.Kind())

	out, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"z":1,"a":[true,null]}}`, string(out))
	assert.Equal(t, `{"data":{"z":1,"a":[true,null]}}`, string(out))
}

func TestValue_GetPath(t *testing.T) {
	v, err := ParseValue([]byte(`{"choices":[{"message":{"role":"assistant","content":"Flood risk is low."}}],"usage":null}`))
	require.NoError(t, err)

	content, ok := v.Get("choices.0.message.content")
	require.True(t, ok)
	assert.Equal(t, "Flood risk is low.", content.Text())

	usage, ok := v.Get("usage")
	require.True(t, ok, "an explicit null is present")
	assert.True(t, usage.IsNull())

	_, ok = v.Get("choices.1.message")
	assert.False(t, ok)
}

func TestParseValue_CompactsWhitespaceKeepsLiterals(t *testing.T) {
	v, err := ParseValue([]byte("{\n  \"b\": 1.50,\n  \"a\": null,\n  \"s\": \"two  spaces\"\n}\n"))
	require.NoError(t, err)

	out, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":1.50,"a":null,"s":"two  spaces"}`, string(out))

	a, ok := v.Field("a")
	require.True(t, ok)
	assert.True(t, a.IsNull())
	assert.Len(t, v.Members(), 3)
}
