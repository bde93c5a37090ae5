// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmactrl

// fakeMem is a software model of a word-addressable register or
// descriptor-array window, standing in for dmareg.RegisterFile in tests
// that have no real /dev/mem to map.
type fakeMem struct {
	words map[uint32]uint32
}

func newFakeMem() *fakeMem {
	return &fakeMem{words: make(map[uint32]uint32)}
}

func (m *fakeMem) Read(offset uint32) uint32 { return m.words[offset] }

func (m *fakeMem) Write(offset uint32, value uint32) { m.words[offset] = value }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
