// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dmactrl drives a Xilinx-style AXI DMA controller from userspace:
// it programs the control/status register file, maintains a cyclic
// scatter-gather descriptor ring, and runs an adaptive polling receive
// loop that reports newly valid regions of a target buffer.
//
// Preconditions such as an unselected channel, the wrong transfer mode, or
// an uninitialized descriptor ring are programmer errors: like the
// original driver this package is modeled on (which throws on exactly
// these conditions), they panic with a ConfigurationError or
// PreconditionError rather than returning an error value a caller might
// silently ignore. Only genuinely recoverable I/O — opening and mapping
// /dev/mem — returns an error.
//
// A Controller owns exclusive OS resources (an open /dev/mem mapping, and
// in scatter-gather mode a second mapping for the descriptor array) and is
// meant to be driven by a single goroutine.
package dmactrl

import (
	"fmt"
	"io"
	"time"

	"github.com/platinasystems/log"

	"github.com/zynqmp/axidma/dmareg"
)

// RegisterWindowDepth is the byte span mapped for the control/status
// register file of a single AXI DMA instance.
const RegisterWindowDepth = 0xFFFF

// DescriptorSize is the size in bytes of one scatter-gather block
// descriptor.
const DescriptorSize = 64

// Block descriptor field offsets, fixed by the AXI DMA IP.
const (
	descNextDesc      = 0x00
	descBufferAddress = 0x08
	descControl       = 0x18
	descStatus        = 0x1C
)

// Channel selects which of the two independent DMA engines a Controller
// talks to.
type Channel int

const (
	// Unknown is the zero value: no channel has been selected yet, and
	// any register access that depends on the offset table panics.
	Unknown Channel = iota
	// MM2S is memory-mapped-to-stream: processor to fabric.
	MM2S
	// S2MM is stream-to-memory-mapped: fabric to processor.
	S2MM
)

func (c Channel) String() string {
	switch c {
	case MM2S:
		return "MM2S"
	case S2MM:
		return "S2MM"
	default:
		return "unset"
	}
}

// channelOffsets is the register-name to offset table for one channel, per
// the fixed AXI DMA memory map.
type channelOffsets struct {
	DMACR    uint32
	DMASR    uint32
	CURDESC  uint32
	TAILDESC uint32
	// Addr is START_ADDRESS on MM2S, DESTINATION_ADDRESS on S2MM.
	Addr   uint32
	Length uint32
}

var mm2sOffsets = channelOffsets{DMACR: 0x00, DMASR: 0x04, CURDESC: 0x08, TAILDESC: 0x10, Addr: 0x18, Length: 0x28}
var s2mmOffsets = channelOffsets{DMACR: 0x30, DMASR: 0x34, CURDESC: 0x38, TAILDESC: 0x40, Addr: 0x48, Length: 0x58}

// mode records which of the two mutually exclusive transfer modes a
// Controller has been initialized for.
type mode int

const (
	modeUninitialized mode = iota
	modeDirect
	modeSG
)

// wordAccessor is the minimal interface a register window or descriptor
// array needs to provide. dmareg.RegisterFile implements it against real
// hardware; tests substitute a software model of the register map.
type wordAccessor interface {
	Read(offset uint32) uint32
	Write(offset uint32, value uint32)
}

// Controller is a userspace driver instance for one AXI DMA IP core.
type Controller struct {
	base    uintptr
	regs    wordAccessor
	closers []io.Closer

	channel Channel
	offsets channelOffsets

	mode     mode
	unitSize uint32

	bd         wordAccessor
	n          int
	descAddr   uint64
	targetAddr uint64
	initsg     bool

	resultOffset, resultSize      uint32
	bdStartIndex, bdStopIndex     uint32
	lastIrqThreshold              uint32
	blockTransfer, bufferTransfer bool

	minLoop, maxLoop          int
	minWait, maxWait, curWait time.Duration

	metrics Recorder
}

// mapDescriptors is overridden in tests to avoid mapping real physical
// memory for the scatter-gather descriptor array.
var mapDescriptors = func(base uint64, length int) (wordAccessor, io.Closer, error) {
	rf, err := dmareg.NewRegisterFile(uintptr(base), length)
	if err != nil {
		return nil, nil, err
	}
	return rf, rf.Window, nil
}

// New maps the AXI DMA register window at the given physical base address
// and returns a Controller ready to have its channel selected. If the
// window can't be mapped the controller is unusable and an error is
// returned instead.
func New(base uintptr, opts ...Option) (*Controller, error) {
	rf, err := dmareg.NewRegisterFile(base, RegisterWindowDepth)
	if err != nil {
		return nil, &IoError{Op: "New", Err: err}
	}

	c := &Controller{
		base:    base,
		regs:    rf,
		closers: []io.Closer{rf.Window},
		minLoop: 5,
		maxLoop: 10,
		minWait: 100 * time.Microsecond,
		maxWait: 10000 * time.Microsecond,
		metrics: noopRecorder{},
	}
	c.curWait = (c.maxWait - c.minWait) / 2

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close unmaps every window this controller owns (the register file and,
// if scatter-gather was initialized, the descriptor array).
func (c *Controller) Close() error {
	var err error
	for _, cl := range c.closers {
		if cerr := cl.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// SetChannel selects which DMA engine subsequent register operations
// address.
func (c *Controller) SetChannel(ch Channel) {
	c.channel = ch
	switch ch {
	case MM2S:
		c.offsets = mm2sOffsets
	case S2MM:
		c.offsets = s2mmOffsets
	}
}

// Channel returns the currently selected channel.
func (c *Controller) Channel() Channel { return c.channel }

func (c *Controller) requireChannel(op string) {
	if c.channel == Unknown {
		panic(&ConfigurationError{Op: op, Msg: "DMA channel is not set"})
	}
}

func (c *Controller) register(offset uint32) uint32      { return c.regs.Read(offset) }
func (c *Controller) setRegister(offset uint32, v uint32) { c.regs.Write(offset, v) }

// Halt writes DMACR = 0, stopping the engine.
func (c *Controller) Halt() {
	c.requireChannel("halt")
	c.setRegister(c.offsets.DMACR, 0)
}

// Reset writes the DMACR soft-reset bit.
func (c *Controller) Reset() {
	c.requireChannel("reset")
	c.setRegister(c.offsets.DMACR, 4)
}

// Run arms the engine, dispatching to the scatter-gather or direct-mode
// start sequence depending on what the engine reports it supports.
func (c *Controller) Run() {
	c.requireChannel("run")
	if c.IsSG() {
		c.runSG()
	} else {
		c.runDirect()
	}
}

// IsIdle reports DMASR bit 1: the engine has completed and is not running.
func (c *Controller) IsIdle() bool {
	return c.dmasr()&0x0002 != 0
}

// IsRunning reports whether the engine is not halted (DMASR bit 0 clear).
//
// The original driver this package is modeled on computes this as a
// bitwise NOT of DMASR masked to bit 0, which is true for nearly every
// register value; that is corrected here to the intended "not halted"
// check.
func (c *Controller) IsRunning() bool {
	return c.dmasr()&0x0001 == 0
}

// IsSG reports DMASR bit 3: the engine has a scatter-gather front end.
func (c *Controller) IsSG() bool {
	return c.dmasr()&0x0008 != 0
}

func (c *Controller) dmasr() uint32 {
	c.requireChannel("DMASR")
	return c.register(c.offsets.DMASR)
}

// IRQioc reports DMASR bit 12, the IOC (I/O complete) interrupt flag.
func (c *Controller) IRQioc() bool {
	return c.dmasr()&(1<<12) != 0
}

// ClearIRQioc clears DMASR bit 12 with a read-modify-write.
func (c *Controller) ClearIRQioc() {
	c.requireChannel("clearIRQioc")
	status := c.register(c.offsets.DMASR)
	c.setRegister(c.offsets.DMASR, status&^(1<<12))
}

// Status is a decoded snapshot of DMASR.
type Status struct {
	Channel                                         Channel
	Halted, Idle, SGIncluded                        bool
	DMAInternalError, DMASlaveError, DMADecodeError bool
	SGInternalError, SGSlaveError, SGDecodeError    bool
	IOCIrq, DelayIrq, ErrorIrq                       bool
	IRQThreshold                                     uint8
}

func (s Status) String() string {
	str := fmt.Sprintf("%s status:", s.Channel)
	if s.Halted {
		str += " halted"
	} else {
		str += " running"
	}
	if s.Idle {
		str += " idle"
	}
	if s.SGIncluded {
		str += " SGIncld"
	}
	if s.DMAInternalError {
		str += " DMAIntErr"
	}
	if s.DMASlaveError {
		str += " DMASlvErr"
	}
	if s.DMADecodeError {
		str += " DMADecErr"
	}
	if s.SGInternalError {
		str += " SGIntErr"
	}
	if s.SGSlaveError {
		str += " SGSlvErr"
	}
	if s.SGDecodeError {
		str += " SGDecErr"
	}
	if s.IOCIrq {
		str += " IOC_Irq"
	}
	if s.DelayIrq {
		str += " Dly_Irq"
	}
	if s.ErrorIrq {
		str += " Err_Irq"
	}
	if s.SGIncluded {
		str += fmt.Sprintf(" IRQThresholdSts:%d", s.IRQThreshold)
	}
	return str
}

// Status decodes DMASR and logs the result, mirroring the corpus's
// notice-line logging convention in place of the original's std::cout
// dump.
func (c *Controller) Status() Status {
	c.requireChannel("getStatus")
	raw := c.register(c.offsets.DMASR)
	s := Status{
		Channel:          c.channel,
		Halted:           raw&0x00000001 != 0,
		Idle:             raw&0x00000002 != 0,
		SGIncluded:       raw&0x00000008 != 0,
		DMAInternalError: raw&0x00000010 != 0,
		DMASlaveError:    raw&0x00000020 != 0,
		DMADecodeError:   raw&0x00000040 != 0,
		SGInternalError:  raw&0x00000100 != 0,
		SGSlaveError:     raw&0x00000200 != 0,
		SGDecodeError:    raw&0x00000400 != 0,
		IOCIrq:           raw&0x00001000 != 0,
		DelayIrq:         raw&0x00002000 != 0,
		ErrorIrq:         raw&0x00004000 != 0,
		IRQThreshold:     uint8((raw >> 16) & 0xFF),
	}
	log.Print(s.String())
	return s
}

// BlockOffset returns the byte offset into the target buffer of the most
// recently completed region.
func (c *Controller) BlockOffset() uint32 { return c.resultOffset }

// BlockSize returns the byte size of the most recently completed region.
func (c *Controller) BlockSize() uint32 { return c.resultSize }
