// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dmametrics is a Prometheus-backed implementation of
// dmactrl.Recorder, exporting the adaptive polling loop's behavior for
// scraping.
package dmametrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zynqmp/axidma/dmactrl"
)

// Metrics registers the axidma gauge/histogram/counter family on its own
// registry and satisfies dmactrl.Recorder. It is not safe to attach one
// Metrics to more than one Controller concurrently, since dmactrl.Recorder
// carries no channel/instance label.
type Metrics struct {
	registry *prometheus.Registry

	curWait     prometheus.Gauge
	iterations  prometheus.Histogram
	readyBlocks prometheus.Histogram
	timeouts    prometheus.Counter
}

// New creates a Metrics instance under the given namespace/subsystem and
// registers its collectors on a fresh registry, so callers can expose it
// independent of any process-global registry.
func New(namespace, subsystem string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		curWait: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cur_wait_microseconds",
			Help:      "Adaptive poll step in effect after the last completed Rx call.",
		}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "poll_iterations",
			Help:      "Number of poll iterations an Rx call took to complete or time out.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
		readyBlocks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ready_blocks",
			Help:      "Number of descriptors reported ready by one blockRx completion.",
			Buckets:   prometheus.LinearBuckets(1, 1, 16),
		}),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rx_timeouts_total",
			Help:      "Total number of Rx calls that returned false after their timeout elapsed.",
		}),
	}
	m.registry.MustRegister(m.curWait, m.iterations, m.readyBlocks, m.timeouts)
	return m
}

func (m *Metrics) ObserveCurWait(d time.Duration) { m.curWait.Set(float64(d.Microseconds())) }
func (m *Metrics) ObserveIterations(n int)        { m.iterations.Observe(float64(n)) }
func (m *Metrics) ObserveReadyBlocks(n int)       { m.readyBlocks.Observe(float64(n)) }
func (m *Metrics) ObserveTimeout()                { m.timeouts.Inc() }

// Handler exposes the registry in Prometheus text format, ready to hand to
// an http.ServeMux.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

var _ dmactrl.Recorder = (*Metrics)(nil)
