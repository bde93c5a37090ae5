// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command axidmactl drives one AXI DMA S2MM channel from the command line:
// it maps the register window (by explicit address or device tree lookup),
// arms either Direct or Scatter-Gather mode, and prints newly ready
// regions of the target buffer as they complete.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/platinasystems/log"

	"github.com/zynqmp/axidma/dmabuf"
	"github.com/zynqmp/axidma/dmaconfig"
	"github.com/zynqmp/axidma/dmactrl"
	"github.com/zynqmp/axidma/dmametrics"
	"github.com/zynqmp/axidma/dtaxidma"
)

func main() {
	var (
		base       = flag.Uint64("base", 0, "physical base address of the AXI DMA register window (0: look up via device tree)")
		compatible = flag.String("compatible", "xlnx,axi-dma-1.00.a", "device tree compatible string used when -base is 0")
		buffer     = flag.String("buffer", "", "u-dma-buf/udmabuf device name backing the target buffer")
		sg         = flag.Bool("sg", false, "use Scatter-Gather mode instead of Direct mode")
		descs      = flag.String("descriptors", "", "u-dma-buf/udmabuf device name for the descriptor ring (SG mode only)")
		ndesc      = flag.Int("n", 8, "descriptor ring depth (SG mode only)")
		blockSize  = flag.Uint("blocksize", 4096, "bytes transferred per Direct-mode run, or per descriptor in SG mode")
		tuning     = flag.String("tuning", "", "path to a dmaconfig YAML tuning file")
		metricAddr = flag.String("metrics-addr", "", "if set, serve Prometheus metrics on this address")
		timeout    = flag.Duration("timeout", 5*time.Second, "per-Rx-call timeout, 0 for adaptive indefinite polling")
	)
	flag.Parse()

	if *buffer == "" {
		log.Print("axidmactl: -buffer is required")
		os.Exit(1)
	}

	baseAddr := uintptr(*base)
	if baseAddr == 0 {
		inst, err := dtaxidma.LookupOne(*compatible)
		if err != nil {
			log.Print(fmt.Sprintf("axidmactl: %v", err))
			os.Exit(1)
		}
		baseAddr = inst.BaseAddress
		log.Print(fmt.Sprintf("axidmactl: found %s at %#x", inst.Path, inst.BaseAddress))
	}

	buf, err := dmabuf.Open(*buffer, false)
	if err != nil {
		log.Print(fmt.Sprintf("axidmactl: %v", err))
		os.Exit(1)
	}
	defer buf.Close()

	opts := []dmactrl.Option{}
	if *tuning != "" {
		t, err := dmaconfig.Load(*tuning)
		if err != nil {
			log.Print(fmt.Sprintf("axidmactl: %v", err))
			os.Exit(1)
		}
		opts = append(opts, dmactrl.WithTuning(t))
	}

	var m *dmametrics.Metrics
	if *metricAddr != "" {
		m = dmametrics.New("axidma", "axidmactl")
		opts = append(opts, dmactrl.WithMetrics(m))
		go serveMetrics(*metricAddr, m)
	}

	ctrl, err := dmactrl.New(baseAddr, opts...)
	if err != nil {
		log.Print(fmt.Sprintf("axidmactl: %v", err))
		os.Exit(1)
	}
	defer ctrl.Close()

	ctrl.SetChannel(dmactrl.S2MM)

	if *sg {
		if *descs == "" {
			log.Print("axidmactl: -descriptors is required with -sg")
			os.Exit(1)
		}
		bd, err := dmabuf.Open(*descs, false)
		if err != nil {
			log.Print(fmt.Sprintf("axidmactl: %v", err))
			os.Exit(1)
		}
		defer bd.Close()

		if err := ctrl.InitSG(bd.PhysicalAddress(), *ndesc, uint32(*blockSize), buf.PhysicalAddress()); err != nil {
			log.Print(fmt.Sprintf("axidmactl: %v", err))
			os.Exit(1)
		}
	} else {
		ctrl.InitDirect(uint32(*blockSize), buf.PhysicalAddress())
	}

	ctrl.Run()

	for {
		if !ctrl.Rx(*timeout) {
			log.Print("axidmactl: rx timed out")
			continue
		}
		log.Print(fmt.Sprintf("axidmactl: ready offset=%#x size=%d", ctrl.BlockOffset(), ctrl.BlockSize()))
	}
}

func serveMetrics(addr string, m *dmametrics.Metrics) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	log.Print(fmt.Sprintf("axidmactl: serving metrics on %s/metrics", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Print(fmt.Sprintf("axidmactl: metrics server: %v", err))
	}
}
