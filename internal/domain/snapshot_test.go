package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const austinSnapshot = `{
	"city": "Austin",
	"temperature": 31.4,
	"feels_like": 35.2,
	"pressure": 1009,
	"humidity": 62,
	"weather": "scattered clouds",
	"wind_speed": 5.66,
	"wind_deg": 160,
	"visibility": 10000,
	"clouds": 40
}`

func TestParseSnapshot_Valid(t *testing.T) {
	snap, err := ParseSnapshot([]byte(austinSnapshot))
	require.NoError(t, err)

	assert.Equal(t, "Austin", snap.City.Text())
	assert.Equal(t, "5.66", snap.WindSpeed.Text())
	assert.Equal(t, "scattered clouds", snap.Weather.Text())
}

func TestParseSnapshot_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"not json", `city=Austin`, "decode json"},
		{"not an object", `["Austin"]`, "expected a JSON object"},
		{"missing field", strings.Replace(austinSnapshot, `"clouds": 40`, `"cloudiness": 40`, 1), `missing field "clouds"`},
		{"null field", strings.Replace(austinSnapshot, `"humidity": 62`, `"humidity": null`, 1), `missing field "humidity"`},
		{"number as string", strings.Replace(austinSnapshot, `"pressure": 1009`, `"pressure": "1009"`, 1), `field "pressure" must be a number`},
		{"city as number", strings.Replace(austinSnapshot, `"city": "Austin"`, `"city": 78701`, 1), `field "city" must be a string`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSnapshot([]byte(tt.input))
			require.ErrorIs(t, err, ErrInvalidSnapshot)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	snap, err := ParseSnapshot([]byte(austinSnapshot))
	require.NoError(t, err)

	out, err := snap.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, austinSnapshot, string(out))
	assert.Len(t, SnapshotKeys(), 10)
}

func TestRenderPrompt_ContainsEveryField(t *testing.T) {
	snap, err := ParseSnapshot([]byte(austinSnapshot))
	require.NoError(t, err)

	prompt, err := RenderPrompt(snap)
	require.NoError(t, err)

	for _, want := range []string{
		"weather data for Austin",
		"Temperature: 31.4°C",
		"Feels Like: 35.2°C",
		"Pressure: 1009 hPa",
		"Humidity: 62%",
		"Weather: scattered clouds",
		"Wind Speed: 5.66 m/s",
		"Wind Direction: 160°",
		"Visibility: 10000 meters",
		"Cloud Coverage: 40%",
		"storms, floods, wildfires, tornadoes",
	} {
		assert.Contains(t, prompt, want)
	}
}
