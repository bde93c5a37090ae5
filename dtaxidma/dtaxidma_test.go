// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dtaxidma

import (
	"testing"

	"github.com/platinasystems/fdt"
)

func compatProp(values ...string) []byte {
	var b []byte
	for _, v := range values {
		b = append(b, []byte(v)...)
		b = append(b, 0)
	}
	return b
}

func regProp(base uint32) []byte {
	return []byte{byte(base >> 24), byte(base >> 16), byte(base >> 8), byte(base)}
}

func sampleTree() *fdt.Tree {
	dma := &fdt.Node{
		Name: "dma@40400000",
		Properties: map[string][]byte{
			"compatible": compatProp("xlnx,axi-dma-1.00.a", "xlnx,axi-dma"),
			"reg":        regProp(0x40400000),
		},
	}
	other := &fdt.Node{
		Name: "ethernet@40c00000",
		Properties: map[string][]byte{
			"compatible": compatProp("xlnx,axi-ethernet-1.00.a"),
			"reg":        regProp(0x40c00000),
		},
	}
	amba := &fdt.Node{
		Name:     "amba_pl",
		Children: map[string]*fdt.Node{dma.Name: dma, other.Name: other},
	}
	root := &fdt.Node{Name: "/", Children: map[string]*fdt.Node{amba.Name: amba}}
	return &fdt.Tree{RootNode: root}
}

func TestLookupInTreeMatchesCompatible(t *testing.T) {
	got := lookupInTree(sampleTree(), "xlnx,axi-dma-1.00.a")
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}
	if got[0].Path != "dma@40400000" {
		t.Errorf("Path = %q, want dma@40400000", got[0].Path)
	}
	if got[0].BaseAddress != 0x40400000 {
		t.Errorf("BaseAddress = %#x, want 0x40400000", got[0].BaseAddress)
	}
}

func TestLookupInTreeNoMatch(t *testing.T) {
	got := lookupInTree(sampleTree(), "xlnx,nonexistent")
	if len(got) != 0 {
		t.Errorf("len(got) = %d, want 0", len(got))
	}
}

func TestSelectOneRejectsZeroMatches(t *testing.T) {
	if _, err := selectOne(nil, "xlnx,axi-dma"); err == nil {
		t.Fatal("selectOne with no matches: got nil error")
	}
}

func TestSelectOneRejectsMultipleMatches(t *testing.T) {
	matches := []Instance{{Path: "a"}, {Path: "b"}}
	if _, err := selectOne(matches, "xlnx,axi-dma"); err == nil {
		t.Fatal("selectOne with two matches: got nil error")
	}
}

func TestSelectOneReturnsSingleMatch(t *testing.T) {
	want := Instance{Path: "dma@40400000", BaseAddress: 0x40400000}
	got, err := selectOne([]Instance{want}, "xlnx,axi-dma")
	if err != nil {
		t.Fatalf("selectOne: %v", err)
	}
	if got != want {
		t.Errorf("selectOne() = %+v, want %+v", got, want)
	}
}
