package nestedarrow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	rowGroups prometheus.Counter
	columns   prometheus.Counter
	rows      prometheus.Counter
	failures  prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	return &metrics{
		rowGroups: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nestedarrow_row_groups_reconstructed_total",
			Help: "Number of row groups reconstructed into records.",
		}),
		columns: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nestedarrow_columns_reconstructed_total",
			Help: "Number of top-level columns reconstructed into arrays.",
		}),
		rows: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nestedarrow_rows_reconstructed_total",
			Help: "Number of rows materialized across all reconstructed records.",
		}),
		failures: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "nestedarrow_reconstruction_failures_total",
			Help: "Number of column reconstructions that returned an error.",
		}),
	}
}
