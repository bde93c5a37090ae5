// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmactrl

import "time"

// Rx is the unified S2MM receive entry point. timeout of 0 means poll
// indefinitely with adaptive calibration; any other value is a budget of
// accumulated poll sleep steps (the nominal step durations summed, not
// measured elapsed time) after which Rx returns false without disturbing
// transfer state, so a later call resumes in the same sub-mode.
//
// Dispatch: Direct mode always uses directRx. Scatter-gather mode resumes
// whichever of blockRx/bufferRx was already in progress; otherwise it
// picks blockRx when the adaptive step has settled at its ceiling (low
// traffic: report descriptors as they complete) and bufferRx otherwise
// (high traffic: amortize polling over the whole ring).
func (c *Controller) Rx(timeout time.Duration) bool {
	if !c.IsSG() {
		return c.directRx(timeout)
	}
	if c.blockTransfer {
		return c.blockRx(timeout)
	}
	if c.bufferTransfer {
		return c.bufferRx(timeout)
	}
	if c.curWait == c.maxWait {
		return c.blockRx(timeout)
	}
	return c.bufferRx(timeout)
}

// pollLoop drives the shared step/sleep/timeout structure behind all three
// rx variants. check reports whether the transfer has completed this
// iteration; when it has, pollLoop calibrates the adaptive step (if
// timeout is the zero value) and returns true.
func (c *Controller) pollLoop(timeout time.Duration, check func() bool) bool {
	step := c.minWait
	if timeout == 0 {
		step = c.curWait
	}

	var waitTime time.Duration
	nloops := 0
	for {
		if check() {
			if timeout == 0 {
				c.calibrateWaitTime(nloops)
			}
			c.metrics.ObserveCurWait(c.curWait)
			c.metrics.ObserveIterations(nloops)
			return true
		}

		time.Sleep(step)
		waitTime += step
		nloops++

		if timeout != 0 && waitTime >= timeout {
			c.metrics.ObserveIterations(nloops)
			c.metrics.ObserveTimeout()
			return false
		}
	}
}

// calibrateWaitTime is the AIMD-like feedback loop that targets a poll
// period producing between minLoop and maxLoop iterations per completion:
// too many iterations (we polled too often, relative to how fast
// completions actually arrive) doubles the step; too few halves it.
func (c *Controller) calibrateWaitTime(nloops int) {
	switch {
	case nloops > c.maxLoop:
		c.curWait *= 2
		if c.curWait > c.maxWait {
			c.curWait = c.maxWait
		}
	case nloops < c.minLoop:
		c.curWait /= 2
		if c.curWait < c.minWait {
			c.curWait = c.minWait
		}
	}
}

func (c *Controller) requireRunning(op string) {
	if c.channel != S2MM {
		panic(&ConfigurationError{Op: op, Msg: "DMA channel is not S2MM"})
	}
	if !c.IsRunning() {
		panic(&PreconditionError{Op: op, Msg: "DMA channel is not running"})
	}
}

func (c *Controller) directRx(timeout time.Duration) bool {
	if c.IsSG() {
		panic(&ConfigurationError{Op: "directRx", Msg: "DMA channel is not configured for Direct mode"})
	}
	c.requireRunning("directRx")

	return c.pollLoop(timeout, func() bool {
		if !c.IsIdle() {
			return false
		}
		c.resultOffset, c.resultSize = 0, c.unitSize
		return true
	})
}

func (c *Controller) bufferRx(timeout time.Duration) bool {
	c.requireSG("bufferRx")
	c.requireRunning("bufferRx")

	c.bufferTransfer = true
	return c.pollLoop(timeout, func() bool {
		if !c.IsIdle() {
			return false
		}
		c.resultOffset = 0
		c.resultSize = c.unitSize * uint32(c.n)
		c.bufferTransfer = false
		return true
	})
}

func (c *Controller) currentIRQThreshold() uint32 {
	return (c.dmasr() >> 16) & 0xFF
}

func (c *Controller) blockRx(timeout time.Duration) bool {
	c.requireSG("blockRx")
	c.requireRunning("blockRx")

	c.blockTransfer = true
	return c.pollLoop(timeout, func() bool {
		var readyBlocks uint32

		if c.IsIdle() {
			c.bdStopIndex = uint32(c.n) - 1
			readyBlocks = c.bdStopIndex - c.bdStartIndex + 1
			c.lastIrqThreshold = uint32(c.n)
			c.blockTransfer = false
		} else if irqT := c.currentIRQThreshold(); irqT < c.lastIrqThreshold {
			readyBlocks = uint32(c.n) - irqT - c.bdStartIndex
			c.lastIrqThreshold = irqT
		}

		if readyBlocks == 0 {
			return false
		}

		c.bdStopIndex = c.bdStartIndex + readyBlocks - 1
		c.resultOffset = uint32(c.bufferAddress(int(c.bdStartIndex)) - c.targetAddr)
		c.resultSize = c.unitSize * readyBlocks
		c.metrics.ObserveReadyBlocks(int(readyBlocks))

		if c.bdStopIndex < uint32(c.n)-1 {
			c.bdStartIndex = c.bdStopIndex + 1
		}
		return true
	})
}
