package worldcities

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Header layout of the simplemaps worldcities.csv export.
const citiesCSV = "\ufeff\"city\",\"city_ascii\",\"lat\",\"lng\",\"country\",\"iso2\",\"iso3\",\"population\"\n" +
	"\"Tokyo\",\"Tokyo\",\"35.6897\",\"139.6922\",\"Japan\",\"JP\",\"JPN\",\"37732000\"\n" +
	"\"Austin\",\"Austin\",\"30.2672\",\"-97.7431\",\"United States\",\"US\",\"USA\",\"2227083\"\n" +
	"\"Nowhere\",\"Nowhere\",\"\",\"\",\"Atlantis\",\"AT\",\"ATL\",\"0\"\n"

func TestParse(t *testing.T) {
	cities, skipped, err := Parse(context.Background(), strings.NewReader(citiesCSV))
	require.NoError(t, err)

	assert.Equal(t, 1, skipped)
	assert.Equal(t, []domain.City{
		{Name: "Tokyo", Country: "Japan", ISO2: "JP", Coordinate: domain.Coordinate{Lat: 35.6897, Lon: 139.6922}},
		{Name: "Austin", Country: "United States", ISO2: "US", Coordinate: domain.Coordinate{Lat: 30.2672, Lon: -97.7431}},
	}, cities)
}

func TestParse_MissingColumns(t *testing.T) {
	_, _, err := Parse(context.Background(), strings.NewReader("city,lat,lng\nTokyo,35.6,139.6\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns: country, iso2")
}

func TestParse_Empty(t *testing.T) {
	_, _, err := Parse(context.Background(), strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}

func TestReader_Cities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worldcities.csv")
	require.NoError(t, os.WriteFile(path, []byte(citiesCSV), 0o600))

	r := NewReader(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	cities, err := r.Cities(context.Background())
	require.NoError(t, err)
	assert.Len(t, cities, 2)
}

func TestReader_MissingFile(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "absent.csv"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := r.Cities(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
