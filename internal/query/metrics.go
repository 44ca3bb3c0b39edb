package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rowsScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flatdb_rows_scanned_total",
			Help: "Rows read while answering finds, joined rows included",
		},
		[]string{"table"},
	)

	rowsReturned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flatdb_rows_returned_total",
			Help: "Rows returned by finds after filtering and windowing",
		},
		[]string{"table"},
	)
)

func observeFind(table string, scanned, returned int) {
	rowsScanned.WithLabelValues(table).Add(float64(scanned))
	rowsReturned.WithLabelValues(table).Add(float64(returned))
}
