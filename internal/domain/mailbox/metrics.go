package mailbox

import "github.com/prometheus/client_golang/prometheus"

var (
	MessagesStored = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wesync",
		Subsystem: "mailbox",
		Name:      "messages_stored_total",
		Help:      "Messages persisted into folders, by folder type",
	}, []string{"folder"})

	FolderEvictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wesync",
		Subsystem: "mailbox",
		Name:      "evictions_total",
		Help:      "Entries evicted by folder capacity limits",
	}, []string{"kind"})
)

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{MessagesStored, FolderEvictions}
}
