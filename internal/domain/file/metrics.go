package file

import "github.com/prometheus/client_golang/prometheus"

var SlicesReceived = prometheus.NewCounter(prometheus.CounterOpts{
	Namespace: "wesync",
	Subsystem: "file",
	Name:      "slices_received",
})

var UploadResults = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wesync",
	Subsystem: "file",
	Name:      "upload_results",
}, []string{"result"})

var PendingUploads = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: "wesync",
	Subsystem: "file",
	Name:      "pending_uploads",
})

// Collectors метрики пакета для регистрации
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{SlicesReceived, UploadResults, PendingUploads}
}
