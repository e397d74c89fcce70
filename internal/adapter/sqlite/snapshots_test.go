package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCityWeather(t *testing.T, name, country, iso2 string, lat, lng float64) domain.CityWeather {
	t.Helper()
	snap, err := domain.ParseSnapshot([]byte(`{"city":"` + name + `","temperature":31.40,"feels_like":35.2,"pressure":1009,"humidity":62,"weather":"scattered clouds","wind_speed":5.66,"wind_deg":160,"visibility":10000,"clouds":40}`))
	require.NoError(t, err)
	return domain.CityWeather{
		City:      domain.City{Name: name, Country: country, ISO2: iso2, Coordinate: domain.Coordinate{Lat: lat, Lon: lng}},
		Snapshot:  snap,
		FetchedAt: time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC),
	}
}

func TestStore_ReplaceAndGetSnapshot(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	want := sampleCityWeather(t, "Austin", "United States", "US", 30.2672, -97.7431)
	require.NoError(t, s.ReplaceSnapshots(ctx, []domain.CityWeather{want}))

	got, err := s.SnapshotByCity(ctx, "Austin")
	require.NoError(t, err)

	assert.Equal(t, want.City, got.City)
	assert.True(t, want.FetchedAt.Equal(got.FetchedAt))
	assert.Equal(t, "31.40", got.Snapshot.Temperature.Text(), "number literals survive storage")
	assert.Equal(t, "scattered clouds", got.Snapshot.Weather.Text())
}

func TestStore_SnapshotByCityMissing(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.SnapshotByCity(context.Background(), "Atlantis")
	require.ErrorIs(t, err, domain.ErrCityNotFound)
}

func TestStore_ReplaceSnapshotsClearsPrevious(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceSnapshots(ctx, []domain.CityWeather{
		sampleCityWeather(t, "Tokyo", "Japan", "JP", 35.6897, 139.6922),
	}))
	require.NoError(t, s.ReplaceSnapshots(ctx, []domain.CityWeather{
		sampleCityWeather(t, "Austin", "United States", "US", 30.2672, -97.7431),
	}))

	_, err := s.SnapshotByCity(ctx, "Tokyo")
	require.ErrorIs(t, err, domain.ErrCityNotFound)
	_, err = s.SnapshotByCity(ctx, "Austin")
	require.NoError(t, err)
}

func TestStore_CityMarkers(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.ReplaceSnapshots(ctx, []domain.CityWeather{
		sampleCityWeather(t, "Austin", "United States", "US", 30.2672, -97.7431),
		sampleCityWeather(t, "Tokyo", "Japan", "JP", 35.6897, 139.6922),
		sampleCityWeather(t, "Houston", "United States", "US", 29.786, -95.3885),
	}))

	tests := []struct {
		name    string
		country string
		want    []domain.CityMarker
	}{
		{"country name ignores case", "united states", []domain.CityMarker{
			{City: "Austin", Lat: 30.2672, Lng: -97.7431},
			{City: "Houston", Lat: 29.786, Lng: -95.3885},
		}},
		{"partial name", "states", []domain.CityMarker{
			{City: "Austin", Lat: 30.2672, Lng: -97.7431},
			{City: "Houston", Lat: 29.786, Lng: -95.3885},
		}},
		{"iso2 code", "jp", []domain.CityMarker{{City: "Tokyo", Lat: 35.6897, Lng: 139.6922}}},
		{"no match", "Peru", []domain.CityMarker{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.CityMarkers(ctx, tt.country)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
