package sync

import "github.com/prometheus/client_golang/prometheus"

var (
	Requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wesync",
		Subsystem: "sync",
		Name:      "requests_total",
		Help:      "Sync requests by protocol revision and mode",
	}, []string{"revision", "mode"})

	ClientChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wesync",
		Subsystem: "sync",
		Name:      "client_changes_total",
		Help:      "Client changes by outcome",
	}, []string{"outcome"})

	DroppedItems = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wesync",
		Subsystem: "sync",
		Name:      "dropped_items_total",
		Help:      "Oversized server changes removed from pages",
	})

	RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "wesync",
		Subsystem: "sync",
		Name:      "request_duration_seconds",
		Help:      "Sync request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"revision"})
)

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{Requests, ClientChanges, DroppedItems, RequestDuration}
}
