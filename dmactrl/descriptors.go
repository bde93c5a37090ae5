// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmactrl

import "fmt"

// InitDirect programs the controller for a single Direct-mode transfer of
// blockSize bytes to or from the physical address addr (DESTINATION_ADDRESS
// on S2MM, START_ADDRESS on MM2S). It panics if the engine reports a
// scatter-gather front end, since Direct and SG are mutually exclusive.
func (c *Controller) InitDirect(blockSize uint32, addr uint64) {
	c.requireChannel("initDirect")
	if c.IsSG() {
		panic(&ConfigurationError{Op: "initDirect", Msg: "DMA channel is not configured for Direct mode"})
	}

	c.setRegister(c.offsets.Addr, uint32(addr))
	c.unitSize = blockSize
	c.mode = modeDirect

	// DMACR[0]=1 run, [12]=1 IOC irq enable, [13]=1 delay irq enable,
	// [14]=1 error irq enable, [15] reserved.
	c.setRegister(c.offsets.DMACR, 0xF001)
}

func (c *Controller) runDirect() {
	if c.mode != modeDirect {
		panic(&ConfigurationError{Op: "run", Msg: "DMA channel is not configured for Direct mode"})
	}
	c.setRegister(c.offsets.Length, c.unitSize)
}

// InitSG programs the controller for scatter-gather mode: it maps n
// descriptors at the physical address bdBase (a region distinct from the
// data buffer), builds the descriptor ring pointing into tgt in
// blockSize-byte strides, and writes CURDESC. It panics if the engine
// reports no scatter-gather front end; it returns an error only if the
// descriptor-array mapping itself fails.
func (c *Controller) InitSG(bdBase uint64, n int, blockSize uint32, tgt uint64) error {
	c.requireChannel("initSG")
	if !c.IsSG() {
		panic(&ConfigurationError{Op: "initSG", Msg: "DMA channel is not configured for Scatter-Gather mode"})
	}

	bd, closer, err := mapDescriptors(bdBase, n*DescriptorSize)
	if err != nil {
		return &IoError{Op: "initSG", Err: err}
	}
	c.closers = append(c.closers, closer)

	c.bd = bd
	c.descAddr = bdBase
	c.targetAddr = tgt
	c.unitSize = blockSize
	c.n = n
	c.mode = modeSG

	c.initSGDescriptors()
	return nil
}

func (c *Controller) initSGDescriptors() {
	for i := 0; i < c.n*DescriptorSize; i += 4 {
		c.bd.Write(uint32(i), 0)
	}

	for i := 0; i < c.n; i++ {
		off := uint32(DescriptorSize * i)
		c.bd.Write(off+descNextDesc, uint32(c.descAddr+descNextDesc+uint64(DescriptorSize*(i+1))))
		c.bd.Write(off+descBufferAddress, uint32(c.targetAddr+uint64(c.unitSize)*uint64(i)))
		c.bd.Write(off+descControl, c.unitSize&0x03FFFFFF)
	}
	c.bd.Write(uint32(DescriptorSize*(c.n-1))+descNextDesc, 0)

	c.setRegister(c.offsets.CURDESC, uint32(c.descAddr))
	c.initsg = true
}

func (c *Controller) requireSG(op string) {
	if !c.initsg {
		panic(&ConfigurationError{Op: op, Msg: "Scatter-Gather is not initialized"})
	}
}

func (c *Controller) runSG() {
	c.requireSG("run")

	// Start channel with IRQ threshold N, cyclic BD mode, IOC enable,
	// run.
	c.setRegister(c.offsets.DMACR, uint32(c.n<<16)|0x1011)
	c.setRegister(c.offsets.TAILDESC, uint32(c.descAddr)+uint32(DescriptorSize*(c.n-1)))

	c.resultOffset, c.resultSize = 0, 0
	c.bdStartIndex, c.bdStopIndex = 0, 0
	c.lastIrqThreshold = uint32(c.n)
	c.blockTransfer, c.bufferTransfer = false, false
}

// IncSGDescTable rewrites every descriptor's BUFFER_ADDRESS so descriptor i
// now points at targetaddr + blocksize*(N*k + i), advancing a larger
// logical ring across the target buffer in blocks of N descriptors. It is
// meant to be called between runs, not while the engine is running.
func (c *Controller) IncSGDescTable(k int) {
	c.requireSG("incSGDescTable")
	for i := 0; i < c.n; i++ {
		off := uint32(DescriptorSize*i) + descBufferAddress
		c.bd.Write(off, uint32(c.targetAddr+uint64(c.unitSize)*uint64(c.n*k+i)))
	}
}

// DescriptorView is a read-only snapshot of one scatter-gather descriptor,
// returned by DumpSGDescTable for inspection.
type DescriptorView struct {
	Index          int
	Address        uint64
	NextDesc       uint32
	BufferAddress  uint32
	Control        uint32
	Status         uint32
}

func (d DescriptorView) String() string {
	return fmt.Sprintf("BD%d: addr %#x NXTDESC %#x, BUFFER_ADDRESS %#x, CONTROL %#x, STATUS %#x",
		d.Index, d.Address, d.NextDesc, d.BufferAddress, d.Control, d.Status)
}

// DumpSGDescTable returns a snapshot of every descriptor in the ring.
func (c *Controller) DumpSGDescTable() []DescriptorView {
	c.requireSG("dumpSGDescTable")
	views := make([]DescriptorView, c.n)
	for i := 0; i < c.n; i++ {
		off := uint32(DescriptorSize * i)
		views[i] = DescriptorView{
			Index:         i,
			Address:       c.descAddr + uint64(off),
			NextDesc:      c.bd.Read(off + descNextDesc),
			BufferAddress: c.bd.Read(off + descBufferAddress),
			Control:       c.bd.Read(off + descControl),
			Status:        c.bd.Read(off + descStatus),
		}
	}
	return views
}

// DumpSGDescAllStatus returns the STATUS field of every descriptor.
func (c *Controller) DumpSGDescAllStatus() []uint32 {
	c.requireSG("dumpSGDescAllStatus")
	out := make([]uint32, c.n)
	for i := range out {
		out[i] = c.bd.Read(uint32(DescriptorSize*i) + descStatus)
	}
	return out
}

// ClearSGDescAllStatus zeroes STATUS on every descriptor. This is meant
// for use when cyclic mode is not enabled; with cyclic mode running the
// engine owns STATUS.
func (c *Controller) ClearSGDescAllStatus() {
	c.requireSG("clearSGDescAllStatus")
	for i := 0; i < c.n; i++ {
		c.bd.Write(uint32(DescriptorSize*i)+descStatus, 0)
	}
}

// SGDescBufferAddress returns the BUFFER_ADDRESS field of descriptor i.
func (c *Controller) SGDescBufferAddress(i int) uint64 {
	c.requireSG("getSGDescBufferAddress")
	c.checkIndex("getSGDescBufferAddress", i)
	return c.bufferAddress(i)
}

func (c *Controller) bufferAddress(i int) uint64 {
	return uint64(c.bd.Read(uint32(DescriptorSize*i) + descBufferAddress))
}

func (c *Controller) checkIndex(op string, i int) {
	if i < 0 || i >= c.n {
		panic(&ConfigurationError{Op: op, Msg: fmt.Sprintf("descriptor index %d is out of bound for %d descriptors", i, c.n)})
	}
}
