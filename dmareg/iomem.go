// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmareg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// IomemReservation describes one line of /proc/iomem: a physical address
// range and the label the kernel has attached to it (a driver name, "System
// RAM", and so on).
type IomemReservation struct {
	Start, End uintptr
	What       string
}

func (r IomemReservation) String() string {
	return fmt.Sprintf("%x-%x: %s", r.Start, r.End, r.What)
}

func (r IomemReservation) overlaps(base uintptr, length int) bool {
	end := base + uintptr(length) - 1
	return base <= r.End && end >= r.Start
}

// ParseIomem reads lines shaped like "40400000-4040ffff : amba_pl:dma@40400000"
// from r. Indented (child) lines are skipped; they nest under the region
// named immediately above them and are not independently useful here.
func ParseIomem(r io.Reader) ([]IomemReservation, error) {
	var out []IomemReservation
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			continue
		}
		fields := strings.SplitN(line, ":", 2)
		if len(fields) != 2 {
			continue
		}
		var start, end uintptr
		if _, err := fmt.Sscanf(fields[0], "%x-%x", &start, &end); err != nil {
			continue
		}
		out = append(out, IomemReservation{
			Start: start,
			End:   end,
			What:  strings.TrimSpace(fields[1]),
		})
	}
	return out, scanner.Err()
}

// CheckUnclaimed returns every top-level /proc/iomem reservation that
// overlaps base..base+length. Entries are not filtered by label: generic
// ones such as "System RAM" or "Reserved" are returned alongside driver
// claims. It is advisory only: on systems without /proc/iomem (or without
// permission to read it) it returns a nil slice and no error, since the
// caller's mmap of /dev/mem is still the authoritative check.
func CheckUnclaimed(base uintptr, length int) ([]IomemReservation, error) {
	f, err := os.Open("/proc/iomem")
	if err != nil {
		if os.IsNotExist(err) || os.IsPermission(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	all, err := ParseIomem(f)
	if err != nil {
		return nil, err
	}

	var hits []IomemReservation
	for _, r := range all {
		if r.overlaps(base, length) {
			hits = append(hits, r)
		}
	}
	return hits, nil
}
