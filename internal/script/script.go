// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package script defines the declarative script model: an ordered pipeline of
// steps plus the metadata that drives batch and parallel processing.
package script

import (
	"fmt"
	"maps"
)

// Script is the ordered step sequence plus metadata for one invocation.
// It is the template from which per-item run contexts are built; the template
// itself is never executed directly.
type Script struct {
	Name     string            `yaml:"name" validate:"required"`
	Systems  map[string]string `yaml:"systems"`
	Vars     map[string]string `yaml:"vars"`
	Pipeline []*Step           `yaml:"pipeline" validate:"required,min=1,dive"`

	// Orchestration metadata. Set by the loaders and the CLI, not by script
	// authors.
	BatchMode       bool      `yaml:"-"`
	BatchItemsCount int       `yaml:"-"`
	Selection       Selection `yaml:"-"`
}

// Step is a single pipeline entry. Exit codes returned by the step's command
// are classified against the three code sets; anything unlisted is an
// execution error.
type Step struct {
	Label            string `yaml:"label"`
	Cmd              string `yaml:"cmd" validate:"required"`
	System           string `yaml:"system"`
	SuccessExitCodes []int  `yaml:"success-exit-codes"`
	SkipExitCodes    []int  `yaml:"skip-exit-codes"`
	AbortExitCodes   []int  `yaml:"abort-exit-codes"`
}

// GetLabel returns the step label, or a positional fallback for unlabelled
// steps. Position is 1-based.
func (s *Step) GetLabel(position int) string {
	if s.Label != "" {
		return s.Label
	}

	return fmt.Sprintf("step %d", position)
}

// Clone returns a deep copy of the script. Run contexts built for different
// batch items must never share mutable state, so every map and slice is
// copied.
func (s *Script) Clone() *Script {
	cp := &Script{
		Name:            s.Name,
		Systems:         maps.Clone(s.Systems),
		Vars:            maps.Clone(s.Vars),
		Pipeline:        make([]*Step, len(s.Pipeline)),
		BatchMode:       s.BatchMode,
		BatchItemsCount: s.BatchItemsCount,
		Selection:       s.Selection.clone(),
	}

	for i, step := range s.Pipeline {
		cp.Pipeline[i] = step.clone()
	}

	return cp
}

func (s *Step) clone() *Step {
	cp := *s
	cp.SuccessExitCodes = append([]int(nil), s.SuccessExitCodes...)
	cp.SkipExitCodes = append([]int(nil), s.SkipExitCodes...)
	cp.AbortExitCodes = append([]int(nil), s.AbortExitCodes...)

	return &cp
}
