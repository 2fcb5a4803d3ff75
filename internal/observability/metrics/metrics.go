package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "lantern_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	pipelineRuns    *prometheus.CounterVec
	pipelineLatency *prometheus.HistogramVec
	pipelineErrors  *prometheus.CounterVec

	simulationTotal   *prometheus.CounterVec
	simulationLatency *prometheus.HistogramVec

	sourceLoads *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	notifyTotal *prometheus.CounterVec
)

// Init registers metrics. When db is set, source table gauges are registered too.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		pipelineRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "pipeline_runs_total",
				Help: "Total dataset preparation runs by result",
			},
			[]string{"result"},
		)
		pipelineLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "pipeline_latency_seconds",
				Help:    "Dataset preparation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		pipelineErrors = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "pipeline_errors_total",
				Help: "Total dataset preparation errors by reason",
			},
			[]string{"reason"},
		)

		simulationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "simulation_total",
				Help: "Total simulation engine runs by result",
			},
			[]string{"result"},
		)
		simulationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "simulation_latency_seconds",
				Help:    "Simulation engine latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		sourceLoads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "source_loads_total",
				Help: "Total source table loads by backend and outcome",
			},
			[]string{"backend", "outcome"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		notifyTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "notify_total",
				Help: "Total run notifications by channel and result",
			},
			[]string{"channel", "result"},
		)

		prometheus.MustRegister(
			pipelineRuns,
			pipelineLatency,
			pipelineErrors,
			simulationTotal,
			simulationLatency,
			sourceLoads,
			exportTotal,
			exportLatency,
			notifyTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObservePipelineRun records preparation latency and result.
func ObservePipelineRun(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if pipelineRuns != nil {
		pipelineRuns.WithLabelValues(result).Inc()
	}
	if pipelineLatency != nil {
		pipelineLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncPipelineError increments the preparation error counter.
func IncPipelineError(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if pipelineErrors != nil {
		pipelineErrors.WithLabelValues(reason).Inc()
	}
}

// ObserveSimulation records engine latency and result.
func ObserveSimulation(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if simulationTotal != nil {
		simulationTotal.WithLabelValues(result).Inc()
	}
	if simulationLatency != nil {
		simulationLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncSourceLoad counts a source table load.
func IncSourceLoad(backend, outcome string) {
	if backend == "" {
		backend = "unknown"
	}
	if outcome == "" {
		outcome = resultSuccess
	}
	if sourceLoads != nil {
		sourceLoads.WithLabelValues(backend, outcome).Inc()
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncNotify counts a run notification.
func IncNotify(channel, result string) {
	if channel == "" {
		channel = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if notifyTotal != nil {
		notifyTotal.WithLabelValues(channel, result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	SourceOutcomeHit      = "hit"
	SourceOutcomeLoaded   = "loaded"
	SourceOutcomeNotFound = "not_found"
	SourceOutcomeError    = "error"
)
