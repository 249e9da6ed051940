package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched counts query pages received, empty pages included.
	PagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arcgis_pages_fetched_total",
			Help: "Total number of feature query pages fetched",
		},
	)

	// RecordsFetched counts records accumulated across all fetches.
	RecordsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "arcgis_records_fetched_total",
			Help: "Total number of feature records fetched",
		},
	)
)
