// metrics.go: optional Prometheus instrumentation for a Ring
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package ringalloc

import (
	"sync/atomic"
	"time"

	timecache "github.com/agilira/go-timecache"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors a Ring reports allocation
// activity to. The zero value is not usable; build one with
// NewMetrics and register it with whatever registry the host
// application uses.
type Metrics struct {
	allocations *prometheus.CounterVec
	extends     *prometheus.CounterVec
	jams        prometheus.Counter
	bytesInUse  prometheus.Gauge

	lastJamUnixNano atomic.Int64
}

// NewMetrics creates a Metrics instance with the given namespace,
// registering its collectors with reg. Pass prometheus.DefaultRegisterer
// for the global registry.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ringalloc_allocations_total",
			Help:      "Allocation attempts against a ring, by outcome.",
		}, []string{"result"}),
		extends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ringalloc_extend_total",
			Help:      "Writer extend-in-place attempts, by outcome.",
		}, []string{"result"}),
		jams: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ringalloc_jam_total",
			Help:      "Scans that were blocked by a busy segment before exhausting free space.",
		}),
		bytesInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ringalloc_bytes_in_use",
			Help:      "Bytes currently granted to live segments.",
		}),
	}
	reg.MustRegister(m.allocations, m.extends, m.jams, m.bytesInUse)
	return m
}

func (m *Metrics) recordAlloc(result string) {
	m.allocations.WithLabelValues(result).Inc()
}

func (m *Metrics) recordExtend(result string) {
	m.extends.WithLabelValues(result).Inc()
}

func (m *Metrics) recordJam() {
	m.jams.Inc()
}

func (m *Metrics) addBytesInUse(delta int64) {
	m.bytesInUse.Add(float64(delta))
}

// setLastJam records the cached time of the most recent jam without
// taking a time.Now syscall on the allocation hot path.
func (m *Metrics) setLastJam(tc *timecache.TimeCache) {
	if tc == nil {
		return
	}
	m.lastJamUnixNano.Store(tc.CachedTime().UnixNano())
}

// LastJam returns the wall-clock time of the most recent recorded
// jam, or the zero time if none has occurred yet.
func (m *Metrics) LastJam() time.Time {
	nanos := m.lastJamUnixNano.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}
