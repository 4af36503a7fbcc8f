// Package metrics provides Prometheus metrics for the quiniela predictor service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the predictor.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          atomic.Bool
	registry         prometheus.Registerer

	// Training
	trainingRuns     *prometheus.CounterVec
	trainingDuration prometheus.Histogram
	modelAccuracy    prometheus.Gauge
	trainingSamples  prometheus.Gauge
	samplesDropped   prometheus.Counter
	forestEstimators prometheus.Gauge

	// Prediction
	predictions       *prometheus.CounterVec
	predictionErrors  prometheus.Counter
	predictionLatency prometheus.Histogram

	// Corpus
	corpusMatches  prometheus.Gauge
	qualityTeams   prometheus.Gauge
	rowsRejected   *prometheus.CounterVec
	duplicateRows  prometheus.Counter
	repositoryTime *prometheus.HistogramVec

	// Training job queue and worker
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueEnqueue  prometheus.Counter
	queueRejected prometheus.Counter
	jobs          *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "quiniela",
		subsystem:        "predictor",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	m.enabled.Store(true)

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.trainingRuns = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_runs_total",
		Help:      "Total number of classifier training runs by outcome",
	}, []string{"status"})

	m.trainingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_duration_seconds",
		Help:      "Wall time of a full training run (quality, sampling, fit, evaluation)",
		Buckets:   m.histogramBuckets,
	})

	m.modelAccuracy = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_validation_accuracy",
		Help:      "Validation accuracy of the currently served model",
	})

	m.trainingSamples = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_samples",
		Help:      "Usable samples assembled for the last training run",
	})

	m.samplesDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_samples_dropped_total",
		Help:      "Samples dropped because their features could not be computed",
	})

	m.forestEstimators = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "forest_estimators",
		Help:      "Number of trees in the currently served model",
	})

	m.predictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predictions_total",
		Help:      "Total number of predictions served by most likely outcome",
	}, []string{"outcome"})

	m.predictionErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_errors_total",
		Help:      "Total number of failed predictions",
	})

	m.predictionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_latency_milliseconds",
		Help:      "Latency of a single fixture prediction in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.corpusMatches = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "corpus_matches",
		Help:      "Number of match records in the loaded corpus",
	})

	m.qualityTeams = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "quality_teams",
		Help:      "Number of teams with a quality profile",
	})

	m.rowsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "csv_rows_rejected_total",
		Help:      "CSV rows rejected while loading the corpus by reason",
	}, []string{"reason"})

	m.duplicateRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "csv_duplicate_rows_total",
		Help:      "CSV rows skipped because the same fixture was already loaded",
	})

	m.repositoryTime = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_operation_milliseconds",
		Help:      "Latency of corpus store operations in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"operation"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "train_queue_size",
		Help:      "Training jobs waiting in the queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "train_queue_capacity",
		Help:      "Maximum training queue capacity",
	})

	m.queueEnqueue = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "train_queue_enqueue_total",
		Help:      "Total number of training jobs enqueued",
	})

	m.queueRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "train_queue_rejected_total",
		Help:      "Training jobs rejected because the queue was full or closed",
	})

	m.jobs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "train_jobs_total",
		Help:      "Training jobs finished by the worker by final state",
	}, []string{"state"})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)
}

// Training Metrics Functions.

// RecordTrainingRun counts a finished training run under status.
func RecordTrainingRun(status string) {
	if !Enabled() {
		return
	}
	globalManager.trainingRuns.WithLabelValues(status).Inc()
}

// RecordTrainingDuration records the duration of a training run.
func RecordTrainingDuration(d time.Duration) {
	if !Enabled() {
		return
	}
	globalManager.trainingDuration.Observe(d.Seconds())
}

// UpdateModelAccuracy sets the validation accuracy of the served model.
func UpdateModelAccuracy(accuracy float64) {
	if !Enabled() {
		return
	}
	globalManager.modelAccuracy.Set(accuracy)
}

// UpdateTrainingSamples sets the usable sample count of the last run.
func UpdateTrainingSamples(count int) {
	if !Enabled() {
		return
	}
	globalManager.trainingSamples.Set(float64(count))
}

// RecordSamplesDropped adds n dropped samples.
func RecordSamplesDropped(n int) {
	if !Enabled() {
		return
	}
	if n > 0 {
		globalManager.samplesDropped.Add(float64(n))
	}
}

// UpdateForestEstimators sets the number of trees of the served model.
func UpdateForestEstimators(count int) {
	if !Enabled() {
		return
	}
	globalManager.forestEstimators.Set(float64(count))
}

// Prediction Metrics Functions.

// RecordPrediction counts a served prediction by its most likely outcome.
func RecordPrediction(outcome string) {
	if !Enabled() {
		return
	}
	globalManager.predictions.WithLabelValues(outcome).Inc()
}

// RecordPredictionError increments the prediction error counter.
func RecordPredictionError() {
	if !Enabled() {
		return
	}
	globalManager.predictionErrors.Inc()
}

// RecordPredictionLatency records prediction latency in milliseconds.
func RecordPredictionLatency(latencyMs float64) {
	if !Enabled() {
		return
	}
	globalManager.predictionLatency.Observe(latencyMs)
}

// Corpus Metrics Functions.

// UpdateCorpusMatches sets the number of loaded match records.
func UpdateCorpusMatches(count int) {
	if !Enabled() {
		return
	}
	globalManager.corpusMatches.Set(float64(count))
}

// UpdateQualityTeams sets the number of profiled teams.
func UpdateQualityTeams(count int) {
	if !Enabled() {
		return
	}
	globalManager.qualityTeams.Set(float64(count))
}

// RecordRowRejected counts a CSV row rejected for reason.
func RecordRowRejected(reason string) {
	if !Enabled() {
		return
	}
	globalManager.rowsRejected.WithLabelValues(reason).Inc()
}

// RecordDuplicateRow counts a CSV row skipped as a duplicate fixture.
func RecordDuplicateRow() {
	if !Enabled() {
		return
	}
	globalManager.duplicateRows.Inc()
}

// RecordRepositoryLatency records the latency of a store operation.
func RecordRepositoryLatency(operation string, latencyMs float64) {
	if !Enabled() {
		return
	}
	globalManager.repositoryTime.WithLabelValues(operation).Observe(latencyMs)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the number of waiting training jobs.
func UpdateQueueSize(size int) {
	if !Enabled() {
		return
	}
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if !Enabled() {
		return
	}
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if !Enabled() {
		return
	}
	globalManager.queueEnqueue.Inc()
}

// RecordQueueRejected increments the rejected enqueue counter.
func RecordQueueRejected() {
	if !Enabled() {
		return
	}
	globalManager.queueRejected.Inc()
}

// RecordJob counts a training job entering state.
func RecordJob(state string) {
	if !Enabled() {
		return
	}
	globalManager.jobs.WithLabelValues(state).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !Enabled() {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !Enabled() {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !Enabled() {
		return
	}
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// SetEnabled switches recording by the package-level helpers on or off.
// Registered series keep their last values while disabled.
func SetEnabled(enabled bool) {
	globalManager.enabled.Store(enabled)
}

// Enabled reports whether the package-level helpers record.
func Enabled() bool {
	return globalManager.enabled.Load()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
