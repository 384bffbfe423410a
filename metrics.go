package repdata

import (
	"github.com/prometheus/client_golang/prometheus"
)

type RelayCollector struct {
	relay *Relay

	deltasExtracted *prometheus.Desc
	deltasApplied   *prometheus.Desc
	wireBytes       *prometheus.Desc
	replicas        *prometheus.Desc
}

func NewRelayCollector(relay *Relay) *RelayCollector {
	return &RelayCollector{
		relay: relay,

		deltasExtracted: prometheus.NewDesc(
			"repdata_deltas_extracted_total",
			"Total number of deltas extracted and broadcast",
			nil, nil,
		),
		deltasApplied: prometheus.NewDesc(
			"repdata_deltas_applied_total",
			"Total number of deltas applied on receiving replicas",
			nil, nil,
		),
		wireBytes: prometheus.NewDesc(
			"repdata_wire_bytes_total",
			"Total encoded delta bytes put on the wire",
			nil, nil,
		),
		replicas: prometheus.NewDesc(
			"repdata_replicas",
			"Replicas currently joined to the relay",
			nil, nil,
		),
	}
}

func (rc *RelayCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- rc.deltasExtracted
	ch <- rc.deltasApplied
	ch <- rc.wireBytes
	ch <- rc.replicas
}

func (rc *RelayCollector) Collect(ch chan<- prometheus.Metric) {
	stats := rc.relay.Stats()

	ch <- prometheus.MustNewConstMetric(
		rc.deltasExtracted,
		prometheus.CounterValue,
		float64(stats.Extracted.Load()),
	)
	ch <- prometheus.MustNewConstMetric(
		rc.deltasApplied,
		prometheus.CounterValue,
		float64(stats.Applied.Load()),
	)
	ch <- prometheus.MustNewConstMetric(
		rc.wireBytes,
		prometheus.CounterValue,
		float64(stats.WireBytes.Load()),
	)
	ch <- prometheus.MustNewConstMetric(
		rc.replicas,
		prometheus.GaugeValue,
		float64(stats.Replicas.Load()),
	)
}
