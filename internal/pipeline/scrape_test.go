package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/pipeline"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCities struct {
	cities []domain.City
	err    error
}

func (m *mockCities) Cities(_ context.Context) ([]domain.City, error) {
	return m.cities, m.err
}

type mockFetcher struct {
	failFor map[string]bool
	seen    []string
}

func (m *mockFetcher) FetchCurrent(_ context.Context, city domain.City) (domain.WeatherSnapshot, error) {
	m.seen = append(m.seen, city.Name)
	if m.failFor[city.Name] {
		return domain.WeatherSnapshot{}, errors.New("openweather API error: status 500")
	}
	return domain.WeatherSnapshot{City: domain.String(city.Name), Temperature: domain.Number("20")}, nil
}

type mockSnapshotLoader struct {
	calls [][]domain.CityWeather
	err   error
}

func (m *mockSnapshotLoader) ReplaceSnapshots(_ context.Context, snapshots []domain.CityWeather) error {
	m.calls = append(m.calls, snapshots)
	return m.err
}

func scrapeCities() []domain.City {
	return []domain.City{
		{Name: "Tokyo", Country: "Japan", ISO2: "JP"},
		{Name: "Austin", Country: "United States", ISO2: "US"},
		{Name: "Houston", Country: "United States", ISO2: "US"},
		{Name: "Dallas", Country: "United States", ISO2: "US"},
	}
}

var scrapeTime = time.Date(2025, 7, 1, 18, 0, 0, 0, time.UTC)

func TestScraper_StoresMatchingCities(t *testing.T) {
	fetcher := &mockFetcher{}
	loader := &mockSnapshotLoader{}
	metrics := newTestMetrics()
	s := pipeline.NewScraper(&mockCities{cities: scrapeCities()}, fetcher, loader, 0, clockwork.NewFakeClockAt(scrapeTime), discardLogger(), metrics)

	n, err := s.Scrape(context.Background(), "us")
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"Austin", "Houston", "Dallas"}, fetcher.seen)
	require.Len(t, loader.calls, 1)
	require.Len(t, loader.calls[0], 3)
	assert.Equal(t, "Austin", loader.calls[0][0].City.Name)
	assert.Equal(t, scrapeTime, loader.calls[0][0].FetchedAt)
	assert.InDelta(t, 3.0, testutil.ToFloat64(metrics.SnapshotsStored), 0)
}

func TestScraper_LimitAndFailuresSkipped(t *testing.T) {
	fetcher := &mockFetcher{failFor: map[string]bool{"Austin": true}}
	loader := &mockSnapshotLoader{}
	s := pipeline.NewScraper(&mockCities{cities: scrapeCities()}, fetcher, loader, 3, clockwork.NewFakeClockAt(scrapeTime), discardLogger(), newTestMetrics())

	n, err := s.Scrape(context.Background(), domain.AllCountries)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"Tokyo", "Austin", "Houston"}, fetcher.seen, "limit applies before fetching")
	require.Len(t, loader.calls, 1)
	assert.Equal(t, "Tokyo", loader.calls[0][0].City.Name)
	assert.Equal(t, "Houston", loader.calls[0][1].City.Name)
}

func TestScraper_NoMatchLeavesStoreUntouched(t *testing.T) {
	fetcher := &mockFetcher{}
	loader := &mockSnapshotLoader{}
	s := pipeline.NewScraper(&mockCities{cities: scrapeCities()}, fetcher, loader, 0, clockwork.NewFakeClock(), discardLogger(), newTestMetrics())

	n, err := s.Scrape(context.Background(), "Peru")
	require.NoError(t, err)

	assert.Zero(t, n)
	assert.Empty(t, fetcher.seen)
	assert.Empty(t, loader.calls)
}

func TestScraper_Errors(t *testing.T) {
	t.Run("cities", func(t *testing.T) {
		s := pipeline.NewScraper(&mockCities{err: errors.New("open cities: no such file")}, &mockFetcher{}, &mockSnapshotLoader{}, 0, clockwork.NewFakeClock(), discardLogger(), newTestMetrics())
		_, err := s.Scrape(context.Background(), "US")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "list cities")
	})

	t.Run("store", func(t *testing.T) {
		loader := &mockSnapshotLoader{err: errors.New("database is locked")}
		s := pipeline.NewScraper(&mockCities{cities: scrapeCities()}, &mockFetcher{}, loader, 0, clockwork.NewFakeClock(), discardLogger(), newTestMetrics())
		_, err := s.Scrape(context.Background(), "US")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store snapshots")
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		loader := &mockSnapshotLoader{}
		s := pipeline.NewScraper(&mockCities{cities: scrapeCities()}, &mockFetcher{}, loader, 0, clockwork.NewFakeClock(), discardLogger(), newTestMetrics())
		_, err := s.Scrape(ctx, "US")
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, loader.calls)
	})
}
