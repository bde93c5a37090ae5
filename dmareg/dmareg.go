// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dmareg maps physical memory windows through /dev/mem and provides
// volatile-style 32-bit register access over them.
package dmareg

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MemDevice is the physical-memory character device used to map register
// windows and scatter-gather descriptor arrays.
const MemDevice = "/dev/mem"

// Window is a memory-mapped physical address range. All reads and writes go
// through atomic operations so the compiler can't coalesce, reorder, or
// elide accesses the hardware must actually observe.
type Window struct {
	fd   int
	base uintptr
	mem  []byte
}

// Map opens MemDevice and maps length bytes starting at the physical
// address base. The caller must call Close when done with the window.
func Map(base uintptr, length int) (*Window, error) {
	fd, err := unix.Open(MemDevice, unix.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("dmareg: open %s: %w", MemDevice, err)
	}

	mem, err := unix.Mmap(fd, int64(base), length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("dmareg: mmap 0x%x/%d: %w", base, length, err)
	}

	return &Window{fd: fd, base: base, mem: mem}, nil
}

// Close unmaps the window and closes the underlying file descriptor.
func (w *Window) Close() error {
	if w.mem == nil {
		return nil
	}
	err := unix.Munmap(w.mem)
	w.mem = nil
	if cerr := unix.Close(w.fd); err == nil {
		err = cerr
	}
	return err
}

// Len returns the mapped length in bytes.
func (w *Window) Len() int { return len(w.mem) }

// BaseAddress returns the physical address this window was mapped at.
func (w *Window) BaseAddress() uintptr { return w.base }

func (w *Window) ptr32(offset uint32) *uint32 {
	if int(offset)+4 > len(w.mem) {
		panic(fmt.Errorf("dmareg: offset 0x%x out of range for %d-byte window", offset, len(w.mem)))
	}
	return (*uint32)(unsafe.Pointer(&w.mem[offset]))
}

// Load32 performs a volatile 32-bit word read at the given byte offset.
func (w *Window) Load32(offset uint32) uint32 {
	return atomic.LoadUint32(w.ptr32(offset))
}

// Store32 performs a volatile 32-bit word write at the given byte offset.
func (w *Window) Store32(offset uint32, value uint32) {
	atomic.StoreUint32(w.ptr32(offset), value)
}

// RegisterFile is a Window accessed at word (offset>>2) granularity, the
// convention used by the AXI DMA register map and by scatter-gather
// descriptor fields.
type RegisterFile struct {
	*Window
}

// NewRegisterFile maps a register window of the given byte depth.
func NewRegisterFile(base uintptr, depth int) (RegisterFile, error) {
	w, err := Map(base, depth)
	if err != nil {
		return RegisterFile{}, err
	}
	return RegisterFile{w}, nil
}

// Read returns the 32-bit register at byte offset.
func (r RegisterFile) Read(offset uint32) uint32 { return r.Load32(offset) }

// Write stores value into the 32-bit register at byte offset.
func (r RegisterFile) Write(offset uint32, value uint32) { r.Store32(offset, value) }
