package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	MissionsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "psm",
		Name:      "missions_created_total",
		Help:      "Missions persisted, by company and kind (single, batch).",
	}, []string{"company", "kind"})

	ChecksMarked = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "psm",
		Name:      "position_checks_marked_total",
		Help:      "Position checks moved out of TO_CHECK, by company and outcome.",
	}, []string{"company", "outcome"})

	SnapshotRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "psm",
		Name:      "inventory_snapshot_rows",
		Help:      "Rows in the inventory snapshot after the last rebuild.",
	}, []string{"company"})

	ShipmentFetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "psm",
		Name:      "shipment_fetch_errors_total",
		Help:      "Failed shipment provider calls.",
	}, []string{"company"})

	registry = prometheus.NewRegistry()
)

func init() {
	registry.MustRegister(MissionsCreated, ChecksMarked, SnapshotRows, ShipmentFetchErrors)
}

// Handler exposes the service metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
