package store

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/heysubinoy/pyazkv/pkg/kv"
)

// Metrics holds timing statistics for store operations.
// Uses atomic operations for thread-safe updates without locks.
type Metrics struct {
	GetCount    atomic.Uint64
	PutCount    atomic.Uint64
	DeleteCount atomic.Uint64
	ErrorCount  atomic.Uint64

	// Cumulative latencies in nanoseconds
	GetLatencyNs    atomic.Uint64
	PutLatencyNs    atomic.Uint64
	DeleteLatencyNs atomic.Uint64
}

// InstrumentedStore wraps any kv.Store implementation with timing metrics.
// This pattern works for in-memory, bolt, Raft-backed and remote stores alike.
type InstrumentedStore[V any] struct {
	store   kv.Store[V]
	metrics *Metrics
}

// Compile-time check to ensure InstrumentedStore implements kv.Store.
var _ kv.Store[string] = (*InstrumentedStore[string])(nil)

// NewInstrumentedStore wraps a store with instrumentation.
func NewInstrumentedStore[V any](store kv.Store[V]) *InstrumentedStore[V] {
	return &InstrumentedStore[V]{
		store:   store,
		metrics: &Metrics{},
	}
}

// Get delegates to the wrapped store and records timing.
func (s *InstrumentedStore[V]) Get(ctx context.Context, key string) (V, bool, error) {
	start := time.Now()
	value, found, err := s.store.Get(ctx, key)
	s.record(&s.metrics.GetCount, &s.metrics.GetLatencyNs, start, err)
	return value, found, err
}

// Put delegates to the wrapped store and records timing.
func (s *InstrumentedStore[V]) Put(ctx context.Context, key string, value V) error {
	start := time.Now()
	err := s.store.Put(ctx, key, value)
	s.record(&s.metrics.PutCount, &s.metrics.PutLatencyNs, start, err)
	return err
}

// Delete delegates to the wrapped store and records timing.
func (s *InstrumentedStore[V]) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.store.Delete(ctx, key)
	s.record(&s.metrics.DeleteCount, &s.metrics.DeleteLatencyNs, start, err)
	return err
}

func (s *InstrumentedStore[V]) record(count, latency *atomic.Uint64, start time.Time, err error) {
	elapsed := time.Since(start).Nanoseconds()
	count.Add(1)
	latency.Add(uint64(elapsed))
	if err != nil {
		s.metrics.ErrorCount.Add(1)
	}
}

// GetMetrics returns a snapshot of current metrics.
func (s *InstrumentedStore[V]) GetMetrics() MetricsSnapshot {
	getCount := s.metrics.GetCount.Load()
	putCount := s.metrics.PutCount.Load()
	deleteCount := s.metrics.DeleteCount.Load()

	return MetricsSnapshot{
		GetCount:         getCount,
		PutCount:         putCount,
		DeleteCount:      deleteCount,
		ErrorCount:       s.metrics.ErrorCount.Load(),
		GetAvgLatency:    avgLatency(s.metrics.GetLatencyNs.Load(), getCount),
		PutAvgLatency:    avgLatency(s.metrics.PutLatencyNs.Load(), putCount),
		DeleteAvgLatency: avgLatency(s.metrics.DeleteLatencyNs.Load(), deleteCount),
	}
}

// ResetMetrics clears all metrics counters.
func (s *InstrumentedStore[V]) ResetMetrics() {
	s.metrics.GetCount.Store(0)
	s.metrics.PutCount.Store(0)
	s.metrics.DeleteCount.Store(0)
	s.metrics.ErrorCount.Store(0)
	s.metrics.GetLatencyNs.Store(0)
	s.metrics.PutLatencyNs.Store(0)
	s.metrics.DeleteLatencyNs.Store(0)
}

func avgLatency(totalNs, count uint64) time.Duration {
	if count == 0 {
		return 0
	}
	return time.Duration(totalNs / count)
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	GetCount         uint64
	PutCount         uint64
	DeleteCount      uint64
	ErrorCount       uint64
	GetAvgLatency    time.Duration
	PutAvgLatency    time.Duration
	DeleteAvgLatency time.Duration
}
