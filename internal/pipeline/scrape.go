package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultScrapeLimit caps how many cities one scrape fetches.
const DefaultScrapeLimit = 100

// CityLister returns the full cities list.
type CityLister interface {
	Cities(ctx context.Context) ([]domain.City, error)
}

// SnapshotLoader replaces the stored snapshots with a new set.
type SnapshotLoader interface {
	ReplaceSnapshots(ctx context.Context, snapshots []domain.CityWeather) error
}

// Scraper fetches current conditions for a country's cities and stores them
// as the new snapshot set.
type Scraper struct {
	cities  CityLister
	fetcher domain.CurrentWeatherFetcher
	loader  SnapshotLoader
	limit   int
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewScraper creates a Scraper. A non-positive limit selects DefaultScrapeLimit.
func NewScraper(cities CityLister, fetcher domain.CurrentWeatherFetcher, loader SnapshotLoader, limit int, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Scraper {
	if limit <= 0 {
		limit = DefaultScrapeLimit
	}
	return &Scraper{
		cities:  cities,
		fetcher: fetcher,
		loader:  loader,
		limit:   limit,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
}

// Scrape fetches every city matching country (name, ISO2 code, or
// domain.AllCountries) up to the limit, in list order. Cities whose fetch
// fails are logged and skipped. When no city matches, the stored snapshots
// are left untouched and Scrape returns 0.
func (s *Scraper) Scrape(ctx context.Context, country string) (int, error) {
	all, err := s.cities.Cities(ctx)
	if err != nil {
		return 0, fmt.Errorf("list cities: %w", err)
	}

	selected := domain.FilterCities(all, country, s.limit)
	if len(selected) == 0 {
		s.logger.Warn("no cities match", "country", country)
		return 0, nil
	}

	s.logger.Info("scrape started", "country", country, "cities", len(selected))
	snapshots := make([]domain.CityWeather, 0, len(selected))
	for _, city := range selected {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		snap, err := s.fetcher.FetchCurrent(ctx, city)
		if err != nil {
			s.logger.Warn("current weather fetch failed", "city", city.Name, "error", err)
			continue
		}
		snapshots = append(snapshots, domain.CityWeather{
			City:      city,
			Snapshot:  snap,
			FetchedAt: s.clock.Now().UTC(),
		})
	}

	if err := s.loader.ReplaceSnapshots(ctx, snapshots); err != nil {
		return 0, fmt.Errorf("store snapshots: %w", err)
	}
	s.metrics.SnapshotsStored.Set(float64(len(snapshots)))
	s.logger.Info("scrape complete", "country", country, "stored", len(snapshots), "failed", len(selected)-len(snapshots))
	return len(snapshots), nil
}
