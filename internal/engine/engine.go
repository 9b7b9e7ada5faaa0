// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package engine runs the effective step sequence of one run context,
// delegating each step's work to a pluggable execution backend and surfacing
// control-flow signals to the batch loop.
package engine

import (
	"context"
	"maps"
	"time"

	"github.com/matt-FFFFFF/autobatch/internal/ctxlog"
	"github.com/matt-FFFFFF/autobatch/internal/progress"
	"github.com/matt-FFFFFF/autobatch/internal/runctx"
	"github.com/matt-FFFFFF/autobatch/internal/script"
)

// Engine executes run contexts. The backend is selected once at startup and
// injected; the engine never branches on its concrete type.
type Engine struct {
	executor Executor
	reporter progress.Reporter
}

// New creates an engine with the given backend. A nil reporter disables
// progress events.
func New(executor Executor, reporter progress.Reporter) *Engine {
	if reporter == nil {
		reporter = progress.NewNullReporter()
	}

	return &Engine{
		executor: executor,
		reporter: reporter,
	}
}

// Run executes the run context's effective steps strictly in order. Step i+1
// begins only after step i completes. Control signals and execution errors
// are returned unmodified; interpreting them is the batch loop's job.
func (e *Engine) Run(ctx context.Context, rc *runctx.RunContext) error {
	logger := ctxlog.Logger(ctx).
		With("script", rc.Script.Name).
		With("batchIndex", rc.BatchIndex)

	effective := rc.Script.Selection.Effective(len(rc.Script.Pipeline))

	logger.Debug("running steps", "selection", rc.Script.Selection.String(), "commandCount", rc.CommandCount)

	for _, pos := range effective {
		if ctx.Err() != nil {
			return ErrUserInterrupt
		}

		step := rc.Script.Pipeline[pos-1]
		label := step.GetLabel(pos)

		e.reporter.Report(progress.Event{
			ItemIndex: rc.BatchIndex,
			ItemCount: rc.Script.BatchItemsCount,
			StepIndex: pos,
			StepCount: rc.CommandCount,
			Label:     label,
			Type:      progress.EventStepStarted,
			Timestamp: time.Now(),
		})

		logger.Info("step", "position", pos, "label", label)

		if err := e.executor.Execute(ctx, step, e.stepVars(rc, step)); err != nil {
			e.reporter.Report(progress.Event{
				ItemIndex: rc.BatchIndex,
				StepIndex: pos,
				StepCount: rc.CommandCount,
				Label:     label,
				Type:      progress.EventFailed,
				Timestamp: time.Now(),
				Data:      progress.EventData{Error: err},
			})

			return err
		}

		e.reporter.Report(progress.Event{
			ItemIndex: rc.BatchIndex,
			StepIndex: pos,
			StepCount: rc.CommandCount,
			Label:     label,
			Type:      progress.EventStepCompleted,
			Timestamp: time.Now(),
		})
	}

	return nil
}

// stepVars returns the variable bindings for one step. Steps bound to a
// system get a private copy with the logical system name and its node name
// added; other steps share the context's bindings.
func (e *Engine) stepVars(rc *runctx.RunContext, step *script.Step) map[string]string {
	if step.System == "" {
		return rc.Variables
	}

	vars := maps.Clone(rc.Variables)
	vars["system"] = step.System
	vars["node"] = rc.Script.Systems[step.System]

	return vars
}
