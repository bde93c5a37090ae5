// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dmabuf

import "fmt"

// IoError wraps a failed open/mmap/sysfs read-or-write. It is returned
// rather than panicking: a buffer that fails to open is simply not open,
// and the caller decides whether that's fatal.
type IoError struct {
	Op   string
	Path string
	Err  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("dmabuf: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// ConfigurationError reports an invalid argument to a setter (sync mode,
// direction, owner) rejected before any sysfs attribute was touched.
type ConfigurationError struct {
	Op  string
	Msg string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("dmabuf: %s: %s", e.Op, e.Msg)
}
