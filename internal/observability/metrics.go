package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges shared by
// the offline pipeline and the online scorer.
type Metrics struct {
	// Offline pipeline metrics.
	RowsIngested  *prometheus.CounterVec // labels: source
	RowsDropped   *prometheus.CounterVec // labels: reason={duplicate,missing_required}
	StageDuration *prometheus.HistogramVec
	PipelineRuns  prometheus.Counter

	// Serving metrics.
	Predictions         *prometheus.CounterVec // labels: source={model,fallback}
	PredictionDuration  prometheus.Histogram
	WeatherCacheLookups *prometheus.CounterVec // labels: result={hit,miss,stale}
	WeatherDefaulted    prometheus.Counter
	VectorWidthWarnings prometheus.Counter
	ModelLoaded         prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsIngested,
		m.RowsDropped,
		m.StageDuration,
		m.PipelineRuns,
		m.Predictions,
		m.PredictionDuration,
		m.WeatherCacheLookups,
		m.WeatherDefaulted,
		m.VectorWidthWarnings,
		m.ModelLoaded,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "road_risk",
			Name:      "rows_ingested_total",
			Help:      "Raw rows read per source dataset.",
		}, []string{"source"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "road_risk",
			Name:      "rows_dropped_total",
			Help:      "Rows discarded during canonicalization by reason.",
		}, []string{"reason"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "road_risk",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of each offline pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		PipelineRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "road_risk",
			Name:      "pipeline_runs_total",
			Help:      "Completed offline pipeline runs.",
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "road_risk",
			Name:      "predictions_total",
			Help:      "Risk predictions served, by score source.",
		}, []string{"source"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "road_risk",
			Name:      "prediction_duration_seconds",
			Help:      "End-to-end duration of a single point prediction.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		WeatherCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "road_risk",
			Name:      "weather_cache_lookups_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
		WeatherDefaulted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "road_risk",
			Name:      "weather_defaulted_total",
			Help:      "Predictions served with a substituted default weather snapshot.",
		}),
		VectorWidthWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "road_risk",
			Name:      "vector_width_warnings_total",
			Help:      "Feature vectors repaired by the pad/truncate safety net.",
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "road_risk",
			Name:      "model_loaded",
			Help:      "1 when a trained classifier is loaded, 0 when running on the rule-based fallback.",
		}),
	}
}
