// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dmabuf opens DMA-coherent buffers allocated by a kernel
// contiguous-memory exporter (u-dma-buf or udmabuf) and exposes their
// physical address, their mapping into the process, and cache-sync
// control over them.
package dmabuf

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// sysClassRoots are searched in order for a subdirectory matching the
// buffer name.
var sysClassRoots = []string{
	"/sys/class/u-dma-buf",
	"/sys/class/udmabuf",
}

// SyncMode selects how CPU cache behavior interacts with the O_SYNC flag
// a buffer was opened with. See the table in the package documentation of
// the exporting kernel module; values outside 0..7 are rejected.
type SyncMode uint8

const (
	SyncCacheOn            SyncMode = 0
	SyncOSyncDisables      SyncMode = 1 // default
	SyncOSyncWriteCombine  SyncMode = 2
	SyncOSyncCoherent      SyncMode = 3
	SyncCacheOnAlways      SyncMode = 4
	SyncCacheOffAlways     SyncMode = 5
	SyncWriteCombineAlways SyncMode = 6
	SyncCoherentAlways     SyncMode = 7
)

func (m SyncMode) valid() bool { return m <= 7 }

// Direction selects which way a manual sync area transfer runs.
type Direction uint8

const (
	ToDevice   Direction = 1 // CPU wrote, about to DMA from the buffer
	FromDevice Direction = 2 // DMA just wrote, CPU about to read
)

// Owner selects which side of the link currently owns a buffer's cache
// lines, when cache management is done manually via SetSyncArea.
type Owner uint8

const (
	CPUOwner Owner = iota
	DeviceOwner
)

// Buffer is a contiguous, physically addressable DMA buffer mapped into the
// process. The zero value is not open; use Open to construct one.
type Buffer struct {
	name      string
	sysfsPath string
	fd        int
	physAddr  uint64
	size      uint64
	mem       []byte
	cacheOn   bool
	syncMode  SyncMode
}

// Open searches the recognized sysfs roots for name, reads its physical
// address and size, opens its device node and maps it into the process.
//
// cacheOn selects whether the CPU cache is left enabled over the mapping:
// when false the device node is opened with O_SYNC, which the default
// sync mode (SyncOSyncDisables) turns into "cache disabled".
//
// Any resources acquired while working towards a failure are released
// before Open returns its error.
func Open(name string, cacheOn bool) (*Buffer, error) {
	sysfsPath, err := locate(name)
	if err != nil {
		return nil, err
	}

	physAddr, err := readHex(filepath.Join(sysfsPath, "phys_addr"))
	if err != nil {
		return nil, err
	}
	size, err := readDecimal(filepath.Join(sysfsPath, "size"))
	if err != nil {
		return nil, err
	}

	flags := unix.O_RDWR
	if !cacheOn {
		flags |= unix.O_SYNC
	}
	devPath := "/dev/" + name
	fd, err := unix.Open(devPath, flags, 0)
	if err != nil {
		return nil, &IoError{Op: "open", Path: devPath, Err: err}
	}

	mem, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, &IoError{Op: "mmap", Path: devPath, Err: err}
	}

	return &Buffer{
		name:      name,
		sysfsPath: sysfsPath,
		fd:        fd,
		physAddr:  physAddr,
		size:      size,
		mem:       mem,
		cacheOn:   cacheOn,
		syncMode:  SyncOSyncDisables,
	}, nil
}

func locate(name string) (string, error) {
	for _, root := range sysClassRoots {
		dir := filepath.Join(root, name)
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return dir, nil
		}
	}
	return "", &IoError{Op: "locate", Path: name, Err: fmt.Errorf("no sysfs class directory found in %v", sysClassRoots)}
}

func readHex(path string) (uint64, error) {
	line, err := readLine(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(line, "0x"), 16, 64)
	if err != nil {
		return 0, &IoError{Op: "parse", Path: path, Err: err}
	}
	return v, nil
}

func readDecimal(path string) (uint64, error) {
	line, err := readLine(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(line, 10, 64)
	if err != nil {
		return 0, &IoError{Op: "parse", Path: path, Err: err}
	}
	return v, nil
}

func readLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &IoError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", &IoError{Op: "read", Path: path, Err: err}
		}
		return "", &IoError{Op: "read", Path: path, Err: fmt.Errorf("empty file")}
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func writeAttr(sysfsPath, attr string, value interface{}) error {
	path := filepath.Join(sysfsPath, attr)
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return &IoError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	if _, err := fmt.Fprint(f, value); err != nil {
		return &IoError{Op: "write", Path: path, Err: err}
	}
	return nil
}

// Close unmaps the buffer and closes its device file descriptor. It
// returns an error if the buffer is not currently open; it is otherwise
// idempotent only in the sense that a second call reports that error
// again rather than unmapping twice.
func (b *Buffer) Close() error {
	if b.mem == nil {
		return fmt.Errorf("dmabuf: %s is not open", b.name)
	}
	err := unix.Munmap(b.mem)
	b.mem = nil
	if cerr := unix.Close(b.fd); err == nil {
		err = cerr
	}
	b.fd = -1
	return err
}

// SetSyncMode writes the CPU-cache strategy for this buffer to sysfs. mode
// must be in 0..7; out-of-range values are rejected without touching
// sysfs.
func (b *Buffer) SetSyncMode(mode SyncMode) error {
	if !mode.valid() {
		return &ConfigurationError{Op: "SetSyncMode", Msg: fmt.Sprintf("mode %d out of range 0..7", mode)}
	}
	if err := writeAttr(b.sysfsPath, "sync_mode", uint8(mode)); err != nil {
		return err
	}
	b.syncMode = mode
	return nil
}

// SetSyncArea writes the region of the buffer that manual cache sync calls
// apply to, and which direction the pending transfer runs.
func (b *Buffer) SetSyncArea(offset, size uint64, dir Direction) error {
	if dir != ToDevice && dir != FromDevice {
		return &ConfigurationError{Op: "SetSyncArea", Msg: fmt.Sprintf("direction %d is not ToDevice or FromDevice", dir)}
	}
	if err := writeAttr(b.sysfsPath, "sync_offset", offset); err != nil {
		return err
	}
	if err := writeAttr(b.sysfsPath, "sync_size", size); err != nil {
		return err
	}
	return writeAttr(b.sysfsPath, "sync_direction", uint8(dir))
}

// SetBufferOwner hands cache ownership of the sync area to the CPU or the
// DMA device.
func (b *Buffer) SetBufferOwner(owner Owner) error {
	switch owner {
	case CPUOwner:
		return writeAttr(b.sysfsPath, "sync_for_cpu", 1)
	case DeviceOwner:
		return writeAttr(b.sysfsPath, "sync_for_device", 1)
	default:
		return &ConfigurationError{Op: "SetBufferOwner", Msg: fmt.Sprintf("owner %d is not CPUOwner or DeviceOwner", owner)}
	}
}

// PhysicalAddress returns the buffer's physical base address, stable for
// the lifetime of the buffer.
func (b *Buffer) PhysicalAddress() uint64 { return b.physAddr }

// Size returns the buffer's byte size.
func (b *Buffer) Size() uint64 { return b.size }

// Bytes returns the mapped buffer contents. The slice is valid only while
// the buffer is open.
func (b *Buffer) Bytes() []byte { return b.mem }

// Name returns the buffer name passed to Open.
func (b *Buffer) Name() string { return b.name }
