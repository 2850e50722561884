package pebble

import (
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

type gauge struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(m *pebble.Metrics) float64
}

// Collector отдает в prometheus внутренние метрики pebble: компакции,
// memtable и WAL. Значения читаются из db.Metrics() на каждый сбор.
type Collector struct {
	s      *Storage
	gauges []gauge
}

func NewCollector(s *Storage) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("wesync", "pebble", name), help, nil, nil)
	}
	return &Collector{
		s: s,
		gauges: []gauge{
			{desc("compactions_total", "Number of compactions performed"), prometheus.CounterValue,
				func(m *pebble.Metrics) float64 { return float64(m.Compact.Count) }},
			{desc("compaction_debt_bytes", "Estimated bytes to compact to reach a stable state"), prometheus.GaugeValue,
				func(m *pebble.Metrics) float64 { return float64(m.Compact.EstimatedDebt) }},
			{desc("compaction_in_progress_bytes", "Bytes being compacted now"), prometheus.GaugeValue,
				func(m *pebble.Metrics) float64 { return float64(m.Compact.InProgressBytes) }},
			{desc("memtable_size_bytes", "Current memtable size"), prometheus.GaugeValue,
				func(m *pebble.Metrics) float64 { return float64(m.MemTable.Size) }},
			{desc("memtables", "Current count of memtables"), prometheus.GaugeValue,
				func(m *pebble.Metrics) float64 { return float64(m.MemTable.Count) }},
			{desc("wal_files", "Number of live WAL files"), prometheus.GaugeValue,
				func(m *pebble.Metrics) float64 { return float64(m.WAL.Files) }},
			{desc("wal_size_bytes", "Size of live WAL data"), prometheus.GaugeValue,
				func(m *pebble.Metrics) float64 { return float64(m.WAL.Size) }},
			{desc("wal_bytes_written_total", "Physical bytes written to the WAL"), prometheus.CounterValue,
				func(m *pebble.Metrics) float64 { return float64(m.WAL.BytesWritten) }},
		},
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, g := range c.gauges {
		ch <- g.desc
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	db := c.s.DB()
	if db == nil {
		return
	}
	m := db.Metrics()
	for _, g := range c.gauges {
		ch <- prometheus.MustNewConstMetric(g.desc, g.kind, g.value(m))
	}
}
