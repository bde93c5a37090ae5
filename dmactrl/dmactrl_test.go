// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmactrl

import (
	"testing"
)

func expectConfigurationPanic(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("want panic, got none")
		}
		if _, ok := r.(*ConfigurationError); !ok {
			t.Errorf("panic value = %#v (%T), want *ConfigurationError", r, r)
		}
	}()
	f()
}

func TestSetChannelSelectsOffsets(t *testing.T) {
	c := &Controller{regs: newFakeMem()}

	c.SetChannel(MM2S)
	if c.offsets != mm2sOffsets {
		t.Errorf("offsets after SetChannel(MM2S) = %+v, want %+v", c.offsets, mm2sOffsets)
	}
	if c.Channel() != MM2S {
		t.Errorf("Channel() = %v, want MM2S", c.Channel())
	}

	c.SetChannel(S2MM)
	if c.offsets != s2mmOffsets {
		t.Errorf("offsets after SetChannel(S2MM) = %+v, want %+v", c.offsets, s2mmOffsets)
	}
}

func TestChannelStringer(t *testing.T) {
	cases := []struct {
		ch   Channel
		want string
	}{
		{Unknown, "unset"},
		{MM2S, "MM2S"},
		{S2MM, "S2MM"},
	}
	for _, tc := range cases {
		if got := tc.ch.String(); got != tc.want {
			t.Errorf("Channel(%d).String() = %q, want %q", tc.ch, got, tc.want)
		}
	}
}

func TestOperationsPanicWithoutChannel(t *testing.T) {
	newC := func() *Controller { return &Controller{regs: newFakeMem()} }

	expectConfigurationPanic(t, func() { newC().Halt() })
	expectConfigurationPanic(t, func() { newC().Reset() })
	expectConfigurationPanic(t, func() { newC().Run() })
	expectConfigurationPanic(t, func() { newC().IsIdle() })
	expectConfigurationPanic(t, func() { newC().IsRunning() })
	expectConfigurationPanic(t, func() { newC().IsSG() })
	expectConfigurationPanic(t, func() { newC().IRQioc() })
	expectConfigurationPanic(t, func() { newC().ClearIRQioc() })
	expectConfigurationPanic(t, func() { newC().Status() })
	expectConfigurationPanic(t, func() { newC().InitDirect(1024, 0x1000) })
}

func TestHaltWritesZeroToDMACR(t *testing.T) {
	regs := newFakeMem()
	regs.Write(s2mmOffsets.DMACR, 0xFFFFFFFF)
	c := &Controller{regs: regs, channel: S2MM, offsets: s2mmOffsets}

	c.Halt()

	if got := regs.Read(s2mmOffsets.DMACR); got != 0 {
		t.Errorf("DMACR = %#x, want 0", got)
	}
}

func TestResetWritesSoftResetBit(t *testing.T) {
	regs := newFakeMem()
	c := &Controller{regs: regs, channel: MM2S, offsets: mm2sOffsets}

	c.Reset()

	if got := regs.Read(mm2sOffsets.DMACR); got != 4 {
		t.Errorf("DMACR = %#x, want 0x4", got)
	}
}

func TestIsIdleReflectsBit1(t *testing.T) {
	regs := newFakeMem()
	c := &Controller{regs: regs, channel: S2MM, offsets: s2mmOffsets}

	if c.IsIdle() {
		t.Error("IsIdle() = true with DMASR=0, want false")
	}
	regs.Write(s2mmOffsets.DMASR, 0x0002)
	if !c.IsIdle() {
		t.Error("IsIdle() = false with DMASR bit1 set, want true")
	}
}

func TestIsRunningReflectsHaltedBit(t *testing.T) {
	regs := newFakeMem()
	c := &Controller{regs: regs, channel: S2MM, offsets: s2mmOffsets}

	if !c.IsRunning() {
		t.Error("IsRunning() = false with DMASR=0 (not halted), want true")
	}
	regs.Write(s2mmOffsets.DMASR, 0x0001)
	if c.IsRunning() {
		t.Error("IsRunning() = true with DMASR halted bit set, want false")
	}
}

func TestIsSGReflectsBit3(t *testing.T) {
	regs := newFakeMem()
	c := &Controller{regs: regs, channel: MM2S, offsets: mm2sOffsets}

	if c.IsSG() {
		t.Error("IsSG() = true with DMASR=0, want false")
	}
	regs.Write(mm2sOffsets.DMASR, 0x0008)
	if !c.IsSG() {
		t.Error("IsSG() = false with DMASR bit3 set, want true")
	}
}

func TestIRQiocAndClear(t *testing.T) {
	regs := newFakeMem()
	regs.Write(s2mmOffsets.DMASR, 1<<12)
	c := &Controller{regs: regs, channel: S2MM, offsets: s2mmOffsets}

	if !c.IRQioc() {
		t.Fatal("IRQioc() = false, want true")
	}
	c.ClearIRQioc()
	if c.IRQioc() {
		t.Error("IRQioc() = true after ClearIRQioc, want false")
	}
	// clearing IOC must not disturb other bits.
	regs.Write(s2mmOffsets.DMASR, regs.Read(s2mmOffsets.DMASR)|0x0002)
	c.ClearIRQioc()
	if !c.IsIdle() {
		t.Error("ClearIRQioc disturbed an unrelated status bit")
	}
}

func TestStatusDecodesDMASR(t *testing.T) {
	regs := newFakeMem()
	regs.Write(s2mmOffsets.DMASR, 0x0001|0x0008|0x0020|(3<<16))
	c := &Controller{regs: regs, channel: S2MM, offsets: s2mmOffsets}

	s := c.Status()
	if !s.Halted {
		t.Error("Halted = false, want true")
	}
	if !s.SGIncluded {
		t.Error("SGIncluded = false, want true")
	}
	if !s.DMASlaveError {
		t.Error("DMASlaveError = false, want true")
	}
	if s.IRQThreshold != 3 {
		t.Errorf("IRQThreshold = %d, want 3", s.IRQThreshold)
	}
	if s.Channel != S2MM {
		t.Errorf("Channel = %v, want S2MM", s.Channel)
	}
	if s.String() == "" {
		t.Error("Status.String() = \"\"")
	}
}

func TestInitDirectProgramsControlAndAddress(t *testing.T) {
	regs := newFakeMem()
	c := &Controller{regs: regs, channel: S2MM, offsets: s2mmOffsets, metrics: noopRecorder{}}

	c.InitDirect(4096, 0x10000000)

	if got := regs.Read(s2mmOffsets.Addr); got != 0x10000000 {
		t.Errorf("Addr register = %#x, want 0x10000000", got)
	}
	if got := regs.Read(s2mmOffsets.DMACR); got != 0xF001 {
		t.Errorf("DMACR = %#x, want 0xF001", got)
	}
	if c.mode != modeDirect {
		t.Errorf("mode = %v, want modeDirect", c.mode)
	}
	if c.unitSize != 4096 {
		t.Errorf("unitSize = %d, want 4096", c.unitSize)
	}
}

func TestInitDirectPanicsWhenSGPresent(t *testing.T) {
	regs := newFakeMem()
	regs.Write(s2mmOffsets.DMASR, 0x0008)
	c := &Controller{regs: regs, channel: S2MM, offsets: s2mmOffsets}

	expectConfigurationPanic(t, func() { c.InitDirect(1024, 0x1000) })
}

func TestRunDispatchesToDirectMode(t *testing.T) {
	regs := newFakeMem()
	c := &Controller{regs: regs, channel: S2MM, offsets: s2mmOffsets, metrics: noopRecorder{}}
	c.InitDirect(2048, 0x1000)

	c.Run()

	if got := regs.Read(s2mmOffsets.Length); got != 2048 {
		t.Errorf("Length register = %d, want 2048", got)
	}
}

func TestRunPanicsWithoutInitInDirectMode(t *testing.T) {
	regs := newFakeMem()
	c := &Controller{regs: regs, channel: S2MM, offsets: s2mmOffsets, metrics: noopRecorder{}}

	expectConfigurationPanic(t, c.Run)
}
