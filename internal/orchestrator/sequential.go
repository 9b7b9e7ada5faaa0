// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package orchestrator drives whole batch runs. The sequential orchestrator
// executes items one after another in a single process; the dispatcher hands
// serialized run contexts to independently launched processes and waits for
// their collective completion.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/matt-FFFFFF/autobatch/internal/batch"
	"github.com/matt-FFFFFF/autobatch/internal/ctxlog"
	"github.com/matt-FFFFFF/autobatch/internal/engine"
	"github.com/matt-FFFFFF/autobatch/internal/progress"
	"github.com/matt-FFFFFF/autobatch/internal/runctx"
	"github.com/matt-FFFFFF/autobatch/internal/script"
)

// ItemRunner executes the effective steps of one run context. It is
// implemented by engine.Engine.
type ItemRunner interface {
	Run(ctx context.Context, rc *runctx.RunContext) error
}

// Sequential executes batch items strictly in row order within the current
// process. Control signals raised by the engine are interpreted here, at the
// batch-loop boundary.
type Sequential struct {
	runner   ItemRunner
	reporter progress.Reporter
}

// NewSequential creates a sequential orchestrator. A nil reporter disables
// progress events.
func NewSequential(runner ItemRunner, reporter progress.Reporter) *Sequential {
	if reporter == nil {
		reporter = progress.NewNullReporter()
	}

	return &Sequential{
		runner:   runner,
		reporter: reporter,
	}
}

// Run builds one isolated run context per batch row and executes them in
// order. A skip signal abandons the current item and moves on to the next; an
// abort signal or an execution error ends the whole run; an interruption ends
// the run with engine.ErrUserInterrupt after a single warning.
func (s *Sequential) Run(ctx context.Context, template *script.Script, rows []batch.Row) error {
	total := len(rows)

	for i, row := range rows {
		if ctx.Err() != nil {
			ctxlog.Warn(ctx, "aborted by user")
			return engine.ErrUserInterrupt
		}

		index := i + 1
		rc := runctx.Build(template, row, index)

		ctxlog.Info(ctx, "batch item", "index", index, "of", total, "runID", rc.RunID)

		s.reporter.Report(progress.Event{
			ItemIndex: index,
			ItemCount: total,
			Label:     rc.Script.Name,
			Type:      progress.EventItemStarted,
			Timestamp: time.Now(),
		})

		if err := s.runItem(ctx, rc, total); err != nil {
			return err
		}
	}

	return nil
}

// RunPrepared executes one externally prepared run context, applying the same
// boundary interpretation as Run: a skip abandons the item without failing
// it.
func (s *Sequential) RunPrepared(ctx context.Context, rc *runctx.RunContext) error {
	ctxlog.Info(ctx, "prepared batch item", "index", rc.BatchIndex, "runID", rc.RunID)

	s.reporter.Report(progress.Event{
		ItemIndex: rc.BatchIndex,
		ItemCount: rc.Script.BatchItemsCount,
		Label:     rc.Script.Name,
		Type:      progress.EventItemStarted,
		Timestamp: time.Now(),
	})

	return s.runItem(ctx, rc, rc.Script.BatchItemsCount)
}

func (s *Sequential) runItem(ctx context.Context, rc *runctx.RunContext, total int) error {
	err := s.runner.Run(ctx, rc)

	skip := new(engine.SkipError)
	if errors.As(err, &skip) {
		ctxlog.Info(ctx, "skipping batch item", "index", rc.BatchIndex, "reason", skip.Reason)

		s.reporter.Report(progress.Event{
			ItemIndex: rc.BatchIndex,
			ItemCount: total,
			Label:     rc.Script.Name,
			Type:      progress.EventItemSkipped,
			Timestamp: time.Now(),
			Data:      progress.EventData{Reason: skip.Reason},
		})

		return nil
	}

	if err != nil {
		if errors.Is(err, engine.ErrUserInterrupt) {
			ctxlog.Warn(ctx, "aborted by user")
		}

		return err
	}

	s.reporter.Report(progress.Event{
		ItemIndex: rc.BatchIndex,
		ItemCount: total,
		Label:     rc.Script.Name,
		Type:      progress.EventItemCompleted,
		Timestamp: time.Now(),
	})

	return nil
}
