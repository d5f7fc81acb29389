package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "traffic_viz"

// Metrics holds the Prometheus counters, histograms, and gauges for the chart service.
type Metrics struct {
	// Dataset cache metrics.
	DatasetLoads        *prometheus.CounterVec   // labels: dataset={tabular,hierarchy}, outcome={success,error}
	DatasetCache        *prometheus.CounterVec   // labels: dataset, result={hit,miss}
	DatasetLoadDuration *prometheus.HistogramVec // labels: dataset

	// Chart metrics.
	Renders         *prometheus.CounterVec   // labels: chart, outcome={success,error}
	RenderDuration  *prometheus.HistogramVec // labels: chart
	ZoomTransitions prometheus.Counter
	SessionsActive  prometheus.Gauge
	SessionsEvicted prometheus.Counter

	// Interaction event pipeline metrics.
	EventsPublished         prometheus.Counter
	EventsDropped           prometheus.Counter
	TransformErrors         prometheus.Counter
	PipelineRunning         prometheus.Gauge
	EventSinkEnabled        prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)
	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetCache,
		m.DatasetLoadDuration,
		m.Renders,
		m.RenderDuration,
		m.ZoomTransitions,
		m.SessionsActive,
		m.SessionsEvicted,
		m.EventsPublished,
		m.EventsDropped,
		m.TransformErrors,
		m.PipelineRunning,
		m.EventSinkEnabled,
		m.BatchSize,
		m.BatchProcessingDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      help("Dataset fetch-and-parse attempts by dataset and outcome."),
		}, []string{"dataset", "outcome"}),
		DatasetCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_cache_total",
			Help:      help("Dataset cache lookups by dataset and result."),
		}, []string{"dataset", "result"}),
		DatasetLoadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      help("Duration of a dataset fetch and parse."),
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"dataset"}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      help("Chart renders by chart kind and outcome."),
		}, []string{"chart", "outcome"}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      help("Duration of aggregating and drawing one chart."),
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"chart"}),
		ZoomTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zoom_transitions_total",
			Help:      help("Sunburst zoom transitions started."),
		}),
		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      help("Dashboard sessions currently held in memory."),
		}),
		SessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      help("Least recently used sessions closed to make room for new ones."),
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      help("Interaction events written to the event sink."),
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      help("Interaction events dropped because the queue was full."),
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_transform_errors_total",
			Help:      help("Interaction events that could not be serialized."),
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_pipeline_running",
			Help:      help("1 when the event pipeline is active, 0 when shut down."),
		}),
		EventSinkEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "event_sink_enabled",
			Help:      help("1 when interaction events are published, 0 otherwise."),
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_batch_size",
			Help:      help("Number of interaction events per published batch."),
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_batch_duration_seconds",
			Help:      help("Duration of a complete drain-serialize-publish cycle."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
