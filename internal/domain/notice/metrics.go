package notice

import "github.com/prometheus/client_golang/prometheus"

var (
	NoticesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wesync",
		Subsystem: "notice",
		Name:      "sent_total",
		Help:      "Notices handed to the transport, by result",
	}, []string{"result"})

	NoticesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "wesync",
		Subsystem: "notice",
		Name:      "dropped_total",
		Help:      "Notices dropped because the queue was full or closed",
	})

	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "wesync",
		Subsystem: "notice",
		Name:      "queue_depth",
		Help:      "Notices waiting for a worker",
	})
)

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{NoticesSent, NoticesDropped, QueueDepth}
}
