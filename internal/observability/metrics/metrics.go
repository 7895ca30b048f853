package metrics

import (
	"database/sql"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	metricPrefix = "avio_"

	resultSuccess = "success"
	resultError   = "error"

	saveModeAuto     = "auto"
	saveModeExplicit = "explicit"
)

var (
	registerOnce sync.Once

	breakdownTotal *prometheus.CounterVec

	consolidationTotal   *prometheus.CounterVec
	consolidationLatency *prometheus.HistogramVec

	projectionTotal   *prometheus.CounterVec
	projectionLatency *prometheus.HistogramVec

	presetSaveTotal   *prometheus.CounterVec
	presetSaveLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	reportJobTotal *prometheus.CounterVec
)

// Init registers service metrics and DB-backed gauges.
func Init(db *sql.DB, logger zerolog.Logger) {
	registerOnce.Do(func() {
		breakdownTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "breakdown_calculations_total",
				Help: "Total monetary breakdown calculations by result",
			},
			[]string{"result"},
		)

		consolidationTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "consolidation_total",
				Help: "Total consolidated summaries by result",
			},
			[]string{"result"},
		)
		consolidationLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "consolidation_latency_seconds",
				Help:    "Consolidation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		projectionTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "projection_total",
				Help: "Total projection batches by result",
			},
			[]string{"result"},
		)
		projectionLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "projection_latency_seconds",
				Help:    "Projection batch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		presetSaveTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "preset_save_total",
				Help: "Total preset saves by mode and result",
			},
			[]string{"mode", "result"},
		)
		presetSaveLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "preset_save_latency_seconds",
				Help:    "Preset save latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"mode", "result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total document exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Document export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		reportJobTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_job_total",
				Help: "Total scheduled report runs by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			breakdownTotal,
			consolidationTotal,
			consolidationLatency,
			projectionTotal,
			projectionLatency,
			presetSaveTotal,
			presetSaveLatency,
			exportTotal,
			exportLatency,
			reportJobTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// IncBreakdown increments the breakdown calculation counter.
func IncBreakdown(result string) {
	if result == "" {
		result = resultSuccess
	}
	if breakdownTotal != nil {
		breakdownTotal.WithLabelValues(result).Inc()
	}
}

// ObserveConsolidation records consolidation latency and result.
func ObserveConsolidation(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if consolidationTotal != nil {
		consolidationTotal.WithLabelValues(result).Inc()
	}
	if consolidationLatency != nil {
		consolidationLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveProjection records projection latency and result.
func ObserveProjection(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if projectionTotal != nil {
		projectionTotal.WithLabelValues(result).Inc()
	}
	if projectionLatency != nil {
		projectionLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObservePresetSave records preset save latency by mode and result.
func ObservePresetSave(mode, result string, duration time.Duration) {
	if mode == "" {
		mode = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if presetSaveTotal != nil {
		presetSaveTotal.WithLabelValues(mode, result).Inc()
	}
	if presetSaveLatency != nil {
		presetSaveLatency.WithLabelValues(mode, result).Observe(duration.Seconds())
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

// IncReportJob increments the scheduled report counter.
func IncReportJob(result string) {
	if result == "" {
		result = resultSuccess
	}
	if reportJobTotal != nil {
		reportJobTotal.WithLabelValues(result).Inc()
	}
}

// Result maps an error to a result label.
func Result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	SaveModeAuto     = saveModeAuto
	SaveModeExplicit = saveModeExplicit
)
