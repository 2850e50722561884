package command

import "github.com/prometheus/client_golang/prometheus"

var Handled = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "wesync",
	Subsystem: "command",
	Name:      "handled_total",
	Help:      "Commands by name, protocol version and result",
}, []string{"command", "version", "result"})

func Collectors() []prometheus.Collector {
	return []prometheus.Collector{Handled}
}
