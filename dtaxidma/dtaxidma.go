// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dtaxidma locates AXI DMA instances in the running system's
// flattened device tree, so callers don't have to hard-code physical base
// addresses that vary across board revisions and PL bitstreams.
package dtaxidma

import (
	"fmt"
	"os"

	"github.com/platinasystems/fdt"
)

// blobPaths are checked in order for a live flattened device tree blob.
// /sys/firmware/fdt is where the running kernel exposes the blob it booted
// from; /proc/device-tree is a per-node fallback some kernels also expose.
var blobPaths = []string{
	"/sys/firmware/fdt",
	"/proc/device-tree/fdt",
}

// Instance describes one matched device tree node.
type Instance struct {
	// Path is the node name as it appeared in the tree, e.g.
	// "dma@40400000".
	Path string
	// BaseAddress is the first cell of the node's "reg" property,
	// assumed to be a single #address-cells=1 physical address as is
	// standard for Zynq/ZynqMP PL peripherals.
	BaseAddress uintptr
}

// Lookup parses the system's device tree and returns every node whose
// "compatible" property contains the given string, such as
// "xlnx,axi-dma-1.00.a". Nodes without a usable "reg" property are
// skipped rather than reported with a zero address.
func Lookup(compatible string) ([]Instance, error) {
	blob, err := readBlob()
	if err != nil {
		return nil, err
	}

	var tree fdt.Tree
	if err := tree.Parse(blob); err != nil {
		return nil, fmt.Errorf("dtaxidma: parsing device tree: %w", err)
	}
	if tree.RootNode == nil {
		return nil, fmt.Errorf("dtaxidma: device tree has no root node")
	}

	return lookupInTree(&tree, compatible), nil
}

func lookupInTree(tree *fdt.Tree, compatible string) []Instance {
	var matches []Instance
	tree.EachPropertyMatching("^compatible$", func(n *fdt.Node) {
		if !containsString(tree.PropStringSlice(n.Properties["compatible"]), compatible) {
			return
		}
		reg, ok := n.Properties["reg"]
		if !ok || len(reg) < 4 {
			return
		}
		matches = append(matches, Instance{
			Path:        n.Name,
			BaseAddress: uintptr(tree.PropUint32(reg)),
		})
	})
	return matches
}

// LookupOne is Lookup for the common case of a single expected instance.
// It returns an error if none or more than one match is found.
func LookupOne(compatible string) (Instance, error) {
	matches, err := Lookup(compatible)
	if err != nil {
		return Instance{}, err
	}
	return selectOne(matches, compatible)
}

func selectOne(matches []Instance, compatible string) (Instance, error) {
	switch len(matches) {
	case 0:
		return Instance{}, fmt.Errorf("dtaxidma: no device tree node compatible with %q", compatible)
	case 1:
		return matches[0], nil
	default:
		return Instance{}, fmt.Errorf("dtaxidma: %d device tree nodes compatible with %q, want 1", len(matches), compatible)
	}
}

func readBlob() ([]byte, error) {
	var lastErr error
	for _, path := range blobPaths {
		blob, err := os.ReadFile(path)
		if err == nil {
			return blob, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("dtaxidma: no readable device tree blob in %v: %w", blobPaths, lastErr)
}

func containsString(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
