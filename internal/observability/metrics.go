package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "disaster_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// enrichment pipeline.
type Metrics struct {
	RowsRead        prometheus.Counter
	RowsDropped     prometheus.Counter
	RecordsEnriched prometheus.Counter
	RecordsExported prometheus.Counter
	PipelineRunning prometheus.Gauge
	RunDuration     prometheus.Histogram

	// NWS lookup metrics.
	StationLookups     *prometheus.CounterVec   // labels: outcome={found,none,error}
	ObservationLookups *prometheus.CounterVec   // labels: outcome={found,none,error}
	APIDuration        *prometheus.HistogramVec // labels: endpoint={points,stations,observations}

	// Current-weather scraper metrics.
	CurrentWeatherFetches *prometheus.CounterVec // labels: outcome={ok,error}
	OpenWeatherDuration   prometheus.Histogram
	SnapshotsStored       prometheus.Gauge
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Total spreadsheet rows read from the input workbook.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Rows dropped because a coordinate was missing.",
		}),
		RecordsEnriched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_enriched_total",
			Help:      "Records that went through station and observation lookup.",
		}),
		RecordsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_exported_total",
			Help:      "Records written by the loaders.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while an enrichment run is in progress, 0 otherwise.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete read-enrich-export run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}),
		StationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "station_lookups_total",
			Help:      "Station lookups by outcome.",
		}, []string{"outcome"}),
		ObservationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observation_lookups_total",
			Help:      "Observation lookups by outcome.",
		}, []string{"outcome"}),
		APIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nws_api_duration_seconds",
			Help:      "NWS API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"endpoint"}),
		CurrentWeatherFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "current_weather_fetches_total",
			Help:      "OpenWeather current-conditions fetches by outcome.",
		}, []string{"outcome"}),
		OpenWeatherDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "openweather_api_duration_seconds",
			Help:      "OpenWeather API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SnapshotsStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "weather_snapshots_stored",
			Help:      "City snapshots written by the most recent scrape.",
		}),
	}

	prometheus.MustRegister(
		m.RowsRead,
		m.RowsDropped,
		m.RecordsEnriched,
		m.RecordsExported,
		m.PipelineRunning,
		m.RunDuration,
		m.StationLookups,
		m.ObservationLookups,
		m.APIDuration,
		m.CurrentWeatherFetches,
		m.OpenWeatherDuration,
		m.SnapshotsStored,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RowsRead:           prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "rows_read_total"}),
		RowsDropped:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "rows_dropped_total"}),
		RecordsEnriched:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "records_enriched_total"}),
		RecordsExported:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "records_exported_total"}),
		PipelineRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		RunDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "run_duration_seconds"}),
		StationLookups:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "station_lookups_total"}, []string{"outcome"}),
		ObservationLookups: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "observation_lookups_total"}, []string{"outcome"}),
		APIDuration:        prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "nws_api_duration_seconds"}, []string{"endpoint"}),

		CurrentWeatherFetches: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "current_weather_fetches_total"}, []string{"outcome"}),
		OpenWeatherDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "openweather_api_duration_seconds"}),
		SnapshotsStored:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "weather_snapshots_stored"}),
	}
}
