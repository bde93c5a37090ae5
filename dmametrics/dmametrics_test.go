// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmametrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCurWaitSetsGauge(t *testing.T) {
	m := New("axidma", "test")
	m.ObserveCurWait(250 * time.Microsecond)

	if got := testutil.ToFloat64(m.curWait); got != 250 {
		t.Errorf("cur_wait_microseconds = %v, want 250", got)
	}
}

func TestObserveTimeoutIncrementsCounter(t *testing.T) {
	m := New("axidma", "test")
	m.ObserveTimeout()
	m.ObserveTimeout()

	if got := testutil.ToFloat64(m.timeouts); got != 2 {
		t.Errorf("rx_timeouts_total = %v, want 2", got)
	}
}

func TestObserveReadyBlocksRecordsToHistogram(t *testing.T) {
	m := New("axidma", "test")
	m.ObserveReadyBlocks(4)
	m.ObserveReadyBlocks(6)

	if got := testutil.CollectAndCount(m.readyBlocks); got != 1 {
		t.Errorf("CollectAndCount(readyBlocks) = %d, want 1", got)
	}
}

func TestHandlerIsNotNil(t *testing.T) {
	m := New("axidma", "test")
	if m.Handler() == nil {
		t.Fatal("Handler() = nil")
	}
}
