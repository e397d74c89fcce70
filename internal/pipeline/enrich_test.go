package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/arnavkrishnan/DisasterRiskAI/internal/domain"
	"github.com/arnavkrishnan/DisasterRiskAI/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

type stubResolver struct {
	station domain.StationRef
	err     error
}

func (s stubResolver) ResolveStation(context.Context, domain.Coordinate) (domain.StationRef, error) {
	return s.station, s.err
}

type stubFetcher struct {
	calls *int
	value domain.Value
}

func (s stubFetcher) FetchObservation(context.Context, domain.StationRef, string) (domain.Value, error) {
	*s.calls++
	return s.value, nil
}

func enrichable() domain.Record {
	return domain.Record{Row: 2, Cells: map[string]string{
		domain.ColumnID:         "2017-0362-USA",
		domain.ColumnStartYear:  "2017",
		domain.ColumnStartMonth: "8",
		domain.ColumnStartDay:   "25",
		domain.ColumnLatitude:   "29.7604",
		domain.ColumnLongitude:  "-95.3698",
	}}
}

func TestRecordEnricher_Enrich(t *testing.T) {
	calls := 0
	obs := domain.Object(domain.Member{Key: "textDescription", Value: domain.String("Heavy Rain")})
	metrics := newTestMetrics()

	e := pipeline.NewEnricher(stubResolver{station: "KHOU"}, stubFetcher{calls: &calls, value: obs}, discardLogger(), metrics)
	out := e.Enrich(context.Background(), enrichable())

	assert.Equal(t, domain.StationRef("KHOU"), out.Station)
	assert.Equal(t, obs, out.Observation)
	assert.Equal(t, 1, calls)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.RecordsEnriched), 0)
}

func TestRecordEnricher_ResolverFailureDegrades(t *testing.T) {
	calls := 0
	e := pipeline.NewEnricher(stubResolver{err: errors.New("timeout")}, stubFetcher{calls: &calls}, discardLogger(), newTestMetrics())

	out := e.Enrich(context.Background(), enrichable())

	assert.False(t, out.Station.Found())
	assert.True(t, out.Observation.IsNull())
	assert.Zero(t, calls)
}
