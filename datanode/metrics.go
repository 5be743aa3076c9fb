package datanode

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "octodist",
		Subsystem: "datanode",
		Name:      "requests_total",
		Help:      "Plan execution requests served, by output type and result.",
	}, []string{"output", "result"})
	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "octodist",
		Subsystem: "datanode",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving plan execution requests, including streaming the results.",
		Buckets:   prometheus.DefBuckets,
	})
)
