// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runctx builds the isolated execution context for one batch item: a
// deep copy of the script template, the merged variable bindings, the 1-based
// batch index and the resolved command counter.
package runctx

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/autobatch/internal/batch"
	"github.com/matt-FFFFFF/autobatch/internal/script"
)

// RunContext is the unit of execution. It is exclusively owned by one engine
// invocation; in parallel mode ownership transfers completely to the spawned
// process via serialization and the origin keeps no live reference.
type RunContext struct {
	RunID        string
	Script       *script.Script
	Variables    map[string]string
	BatchIndex   int
	CommandCount int
}

// Build creates a run context from the script template and one batch row.
// The template is cloned so no two contexts share mutable state; row fields
// override the script's variable defaults. The command counter is resolved
// here, before the context is executed or serialized.
func Build(template *script.Script, row batch.Row, index int) *RunContext {
	s := template.Clone()

	if s.Vars == nil {
		s.Vars = make(map[string]string, len(row))
	}

	for field, value := range row {
		s.Vars[field] = value
	}

	vars := make(map[string]string, len(s.Vars)+1)
	for k, v := range s.Vars {
		vars[k] = v
	}

	vars["batch_index"] = strconv.Itoa(index)

	return &RunContext{
		RunID:        uuid.NewString(),
		Script:       s,
		Variables:    vars,
		BatchIndex:   index,
		CommandCount: len(s.Selection.Effective(len(s.Pipeline))),
	}
}
