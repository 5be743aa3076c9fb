package objectstore

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "octodist",
		Subsystem: "object_store",
		Name:      "operations_total",
		Help:      "Object store operations by kind and result.",
	}, []string{"operation", "result"})
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "octodist",
		Subsystem: "object_store",
		Name:      "operation_duration_seconds",
		Help:      "Object store operation latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	bytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "octodist",
		Subsystem: "object_store",
		Name:      "bytes_total",
		Help:      "Bytes read from and written to the object store.",
	}, []string{"operation"})
)

type metricsStore struct {
	inner Store
}

func WithMetrics(inner Store) Store {
	return &metricsStore{inner: inner}
}

func observe(op string, start time.Time, err error) {
	operationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	result := "ok"
	if err != nil {
		result = "error"
	}
	operationsTotal.WithLabelValues(op, result).Inc()
}

func (s *metricsStore) Read(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	data, err := s.inner.Read(ctx, key)
	observe("read", start, err)
	bytesTotal.WithLabelValues("read").Add(float64(len(data)))
	return data, err
}

func (s *metricsStore) Write(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	err := s.inner.Write(ctx, key, data)
	observe("write", start, err)
	if err == nil {
		bytesTotal.WithLabelValues("write").Add(float64(len(data)))
	}
	return err
}

func (s *metricsStore) List(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	keys, err := s.inner.List(ctx, prefix)
	observe("list", start, err)
	return keys, err
}

func (s *metricsStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, key)
	observe("delete", start, err)
	return err
}
