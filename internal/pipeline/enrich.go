package pipeline

import (
	"context"
	"log/slog"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/observability"
)

// RecordEnricher implements Enricher with an NWS station resolver and
// observation fetcher.
type RecordEnricher struct {
	resolver domain.StationResolver
	fetcher  domain.ObservationFetcher
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewEnricher creates a RecordEnricher.
func NewEnricher(resolver domain.StationResolver, fetcher domain.ObservationFetcher, logger *slog.Logger, metrics *observability.Metrics) *RecordEnricher {
	return &RecordEnricher{
		resolver: resolver,
		fetcher:  fetcher,
		logger:   logger,
		metrics:  metrics,
	}
}

// Enrich attaches the nearest station and its observation for the record's
// start date. Lookup failures leave the fields empty.
func (e *RecordEnricher) Enrich(ctx context.Context, rec domain.Record) domain.Record {
	rec = domain.EnrichRecord(ctx, rec, e.resolver, e.fetcher, e.logger)
	e.metrics.RecordsEnriched.Inc()
	return rec
}
