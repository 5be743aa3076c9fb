package physical

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mergeScanPeersContacted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octodist_merge_scan_peers_contacted_total",
		Help: "Peers contacted by merge scans.",
	})
	mergeScanBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octodist_merge_scan_batches_total",
		Help: "Record batches emitted by merge scans.",
	})
	mergeScanRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "octodist_merge_scan_rows_total",
		Help: "Rows emitted by merge scans.",
	})
	mergeScanFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "octodist_merge_scan_failures_total",
		Help: "Merge scans terminated by an error, by cause.",
	}, []string{"cause"})
)
