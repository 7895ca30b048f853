package metrics

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

func registerDBMetrics(db *sql.DB, logger zerolog.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "fuel_operations_stored",
			Help: "Fueling operations recorded in the history store",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM fuel_operations")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "projection_presets_stored",
			Help: "Projection presets stored across tenants",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM projection_presets")
		},
	))
}

func queryCount(db *sql.DB, logger zerolog.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		logger.Warn().Err(err).Msg("metrics query failed")
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
