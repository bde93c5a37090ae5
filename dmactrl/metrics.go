// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmactrl

import "time"

// Recorder observes the adaptive polling loop. Implementations are
// expected to be safe to call from the single goroutine that drives Rx;
// no concurrency guarantees beyond that are required. dmametrics provides
// a Prometheus-backed implementation.
type Recorder interface {
	// ObserveCurWait reports the adaptive poll step after an Rx call
	// completes, including any recalibration that call made. It is not
	// called when Rx times out.
	ObserveCurWait(d time.Duration)
	// ObserveIterations reports how many poll iterations that Rx call
	// took before completing or timing out.
	ObserveIterations(n int)
	// ObserveReadyBlocks reports how many descriptors were reported
	// ready in one blockRx completion.
	ObserveReadyBlocks(n int)
	// ObserveTimeout is called once per Rx call that returned false.
	ObserveTimeout()
}

type noopRecorder struct{}

func (noopRecorder) ObserveCurWait(time.Duration) {}
func (noopRecorder) ObserveIterations(int)        {}
func (noopRecorder) ObserveReadyBlocks(int)       {}
func (noopRecorder) ObserveTimeout()              {}
