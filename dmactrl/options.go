// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmactrl

import (
	"time"

	"github.com/zynqmp/axidma/dmaconfig"
)

// Option configures a Controller at construction time. The adaptive
// polling parameters are otherwise the driver's original hard-coded
// defaults (minLoop=5, maxLoop=10, minWait=100µs, maxWait=10000µs).
type Option func(*Controller)

// WithLoopBounds overrides the iteration counts calibrateWaitTime targets
// before doubling or halving the poll step.
func WithLoopBounds(minLoop, maxLoop int) Option {
	return func(c *Controller) {
		c.minLoop = minLoop
		c.maxLoop = maxLoop
	}
}

// WithWaitBounds overrides the clamp range for the adaptive poll step.
// curWait is reset to the midpoint of the new range,
// minWait + (maxWait-minWait)/2. This differs from New's built-in default,
// which starts curWait at (maxWait-minWait)/2.
func WithWaitBounds(minWait, maxWait time.Duration) Option {
	return func(c *Controller) {
		c.minWait = minWait
		c.maxWait = maxWait
		c.curWait = minWait + (maxWait-minWait)/2
	}
}

// WithTuning applies a dmaconfig.Tuning loaded from a config file, as if
// its fields had been passed to WithLoopBounds and WithWaitBounds.
func WithTuning(t dmaconfig.Tuning) Option {
	return func(c *Controller) {
		WithLoopBounds(t.MinLoop, t.MaxLoop)(c)
		WithWaitBounds(t.MinWait, t.MaxWait)(c)
	}
}

// WithMetrics attaches a Recorder that observes every Rx call. Without
// this option the controller records nothing.
func WithMetrics(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.metrics = r
		}
	}
}
