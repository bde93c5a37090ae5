// Copyright 2026 The AXI DMA Driver Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dmaconfig loads the adaptive-polling tuning parameters consumed
// by dmactrl.WithTuning from a YAML file, so deployment-specific poll
// timing doesn't have to be compiled in.
package dmaconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning holds the bounds calibrateWaitTime operates within. The zero
// value is not useful; construct one with Load or Default.
type Tuning struct {
	MinLoop int `yaml:"min_loop"`
	MaxLoop int `yaml:"max_loop"`

	MinWait time.Duration `yaml:"min_wait"`
	MaxWait time.Duration `yaml:"max_wait"`
}

// Default returns the driver's built-in polling bounds, the same values
// dmactrl.New applies when no Tuning is supplied at all.
func Default() Tuning {
	return Tuning{
		MinLoop: 5,
		MaxLoop: 10,
		MinWait: 100 * time.Microsecond,
		MaxWait: 10000 * time.Microsecond,
	}
}

func (t Tuning) validate() error {
	if t.MinLoop <= 0 || t.MaxLoop <= 0 {
		return fmt.Errorf("dmaconfig: min_loop and max_loop must be positive")
	}
	if t.MinLoop >= t.MaxLoop {
		return fmt.Errorf("dmaconfig: min_loop must be less than max_loop")
	}
	if t.MinWait <= 0 || t.MaxWait <= 0 {
		return fmt.Errorf("dmaconfig: min_wait and max_wait must be positive")
	}
	if t.MinWait >= t.MaxWait {
		return fmt.Errorf("dmaconfig: min_wait must be less than max_wait")
	}
	return nil
}

// Load reads and parses a YAML tuning file at path. Fields left unset in
// the file fall back to Default's values.
func Load(path string) (Tuning, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Tuning{}, fmt.Errorf("dmaconfig: %w", err)
	}

	t := Default()
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Tuning{}, fmt.Errorf("dmaconfig: parsing %s: %w", path, err)
	}

	if err := t.validate(); err != nil {
		return Tuning{}, err
	}
	return t, nil
}
