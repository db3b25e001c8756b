package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Evaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wildlife",
		Subsystem: "geofence",
		Name:      "evaluations_total",
		Help:      "Total geofence evaluations per tracked entity",
	}, []string{"entity_id"})

	Alerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wildlife",
		Subsystem: "geofence",
		Name:      "exit_alerts_total",
		Help:      "Total geofence exit alerts raised",
	}, []string{"entity_id"})

	Inside = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "wildlife",
		Subsystem: "geofence",
		Name:      "inside",
		Help:      "1 when the entity's latest position is inside the geofence",
	}, []string{"entity_id"})

	RecordsDiscarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wildlife",
		Subsystem: "source",
		Name:      "records_discarded_total",
		Help:      "Malformed position records dropped during snapshot reduction",
	}, []string{"entity_id"})

	PayloadsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wildlife",
		Subsystem: "source",
		Name:      "payloads_dropped_total",
		Help:      "Snapshot payloads that could not be decoded",
	}, []string{"source"})

	MonitorErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wildlife",
		Subsystem: "monitor",
		Name:      "errors_total",
		Help:      "Monitoring sessions terminated by a source error",
	}, []string{"entity_id"})

	SinkFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wildlife",
		Subsystem: "alert",
		Name:      "sink_failures_total",
		Help:      "Alert deliveries that failed and were swallowed",
	}, []string{"sink"})
)

func BoolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
