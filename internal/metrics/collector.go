// Package metrics provides in-memory timing statistics for client operations.
package metrics

import (
	"math"
	"sync"
	"time"
)

// Operation names for the collector.
const (
	OpChat = "chat"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Failures  int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count     int64
	Failures  int64
	AvgTimeMs float64
	MinTimeMs int64
	MaxTimeMs int64
}

// Collector aggregates in-memory timing statistics.
// All methods are thread-safe.
type Collector struct {
	mu  sync.RWMutex
	ops map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{ops: make(map[string]*OperationMetrics)}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records one completed operation. Failed operations count
// towards the timing stats as well as Failures.
func (c *Collector) RecordTiming(op string, duration time.Duration, failed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration
	if failed {
		m.Failures++
	}

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Snapshot returns stats for op, or nil if nothing was recorded.
func (c *Collector) Snapshot(op string) *OperationSnapshot {
	if c == nil {
		return nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	m := c.ops[op]
	if m == nil || m.Count == 0 {
		return nil
	}
	return &OperationSnapshot{
		Count:     m.Count,
		Failures:  m.Failures,
		AvgTimeMs: float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs: m.MinTime.Milliseconds(),
		MaxTimeMs: m.MaxTime.Milliseconds(),
	}
}

// Reset clears all recorded stats.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = make(map[string]*OperationMetrics)
}
