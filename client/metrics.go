package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "octodist_client_requests_total",
		Help: "Plans sent to datanodes, by response output type.",
	}, []string{"output"})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "octodist_client_request_duration_seconds",
		Help:    "Time until a datanode announced its output.",
		Buckets: prometheus.DefBuckets,
	})
)
