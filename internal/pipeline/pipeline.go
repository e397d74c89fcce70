package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/observability"
)

// ErrMissingCoordinateColumns is returned when the input table lacks a
// Latitude or Longitude column.
var ErrMissingCoordinateColumns = errors.New("input has no Latitude/Longitude columns")

// TableExtractor reads the full input table.
type TableExtractor interface {
	ReadTable(ctx context.Context) (domain.Table, error)
}

// Enricher adds weather data to one record.
type Enricher interface {
	Enrich(ctx context.Context, rec domain.Record) domain.Record
}

// BatchLoader writes enriched records to a destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.Record) error
}

// Loaders fans a batch out to several loaders in order, stopping at the
// first failure.
type Loaders []BatchLoader

// LoadBatch implements BatchLoader.
func (ls Loaders) LoadBatch(ctx context.Context, records []domain.Record) error {
	for _, l := range ls {
		if err := l.LoadBatch(ctx, records); err != nil {
			return fmt.Errorf("%T: %w", l, err)
		}
	}
	return nil
}

// Pipeline orchestrates one read-enrich-export run.
type Pipeline struct {
	extractor TableExtractor
	enricher  Enricher
	loader    BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	running   atomic.Bool
	total     atomic.Int64
	enriched  atomic.Int64
}

// Progress is a snapshot of the current (or last) run.
type Progress struct {
	Running  bool  `json:"running"`
	Eligible int64 `json:"eligible"`
	Enriched int64 `json:"enriched"`
}

// New creates a Pipeline with the given stages and observability.
func New(e TableExtractor, en Enricher, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		extractor: e,
		enricher:  en,
		loader:    l,
		logger:    logger,
		metrics:   metrics,
	}
}

// Ready reports whether at least one record has been enriched.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Progress reports how far the current or last run got.
func (p *Pipeline) Progress() Progress {
	return Progress{
		Running:  p.running.Load(),
		Eligible: p.total.Load(),
		Enriched: p.enriched.Load(),
	}
}

// CheckReadiness returns nil once the pipeline has enriched a record,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not enriched any records yet")
	}
	return nil
}

// Run reads the table, drops rows without coordinates, enriches the rest one
// at a time in input order, and hands the result to the loader. Cancelling
// ctx stops the run between rows without loading anything.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started")
	p.metrics.PipelineRunning.Set(1)
	p.running.Store(true)
	defer func() {
		p.metrics.PipelineRunning.Set(0)
		p.running.Store(false)
	}()
	start := time.Now()

	table, err := p.extractor.ReadTable(ctx)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	p.metrics.RowsRead.Add(float64(len(table.Records)))

	if !table.HasColumns(domain.ColumnLatitude, domain.ColumnLongitude) {
		p.logger.Warn("latitude or longitude columns not found, nothing to enrich", "columns", table.Columns)
		return ErrMissingCoordinateColumns
	}

	eligible := domain.FilterEligible(table.Records)
	dropped := len(table.Records) - len(eligible)
	p.metrics.RowsDropped.Add(float64(dropped))
	p.logger.Info("rows selected for enrichment",
		"total", len(table.Records),
		"eligible", len(eligible),
		"dropped", dropped,
	)

	enriched, err := p.enrichAll(ctx, eligible)
	if err != nil {
		return err
	}

	if err := p.loader.LoadBatch(ctx, enriched); err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	p.metrics.RecordsExported.Add(float64(len(enriched)))
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())

	p.logger.Info("pipeline finished",
		"records", len(enriched),
		"duration", time.Since(start),
	)
	return nil
}

func (p *Pipeline) enrichAll(ctx context.Context, records []domain.Record) ([]domain.Record, error) {
	p.total.Store(int64(len(records)))
	p.enriched.Store(0)

	enriched := make([]domain.Record, 0, len(records))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			p.logger.Info("pipeline stopping", "reason", err, "enriched", i, "remaining", len(records)-i)
			return nil, err
		}

		out := p.enricher.Enrich(ctx, rec)
		enriched = append(enriched, out)
		p.enriched.Add(1)
		p.ready.Store(true)

		p.logger.Debug("record enriched",
			"row", out.Row,
			"id", out.ID(),
			"station", string(out.Station),
			"observation", !out.Observation.IsNull(),
			"progress", fmt.Sprintf("%d/%d", i+1, len(records)),
		)
	}
	return enriched, nil
}
