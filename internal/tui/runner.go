// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"bytes"
	"context"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/autobatch/internal/ctxlog"
	events "github.com/matt-FFFFFF/autobatch/internal/progress"
)

// Reporter implements the progress.Reporter interface and forwards events to
// the TUI program.
type Reporter struct {
	program *tea.Program
	closed  bool
	mutex   sync.RWMutex
}

var _ events.Reporter = (*Reporter)(nil)

// NewReporter creates a reporter bound to the given program.
func NewReporter(program *tea.Program) *Reporter {
	return &Reporter{program: program}
}

// Report implements Reporter.Report.
func (r *Reporter) Report(event events.Event) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.closed || r.program == nil {
		return
	}

	r.program.Send(EventMsg{Event: event})
}

// Close implements Reporter.Close.
func (r *Reporter) Close() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.closed = true
}

// RunFunc performs the batch run. It receives a context whose logger writes
// to a buffer that is flushed to stdout after the alternate screen closes.
type RunFunc func(ctx context.Context) error

// Runner owns the TUI program and the reporter feeding it.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *Reporter
}

// NewRunner creates a TUI runner.
func NewRunner() *Runner {
	model := NewModel()
	program := tea.NewProgram(model, tea.WithAltScreen())

	return &Runner{
		model:    model,
		program:  program,
		reporter: NewReporter(program),
	}
}

// GetReporter returns the progress reporter feeding this TUI.
func (r *Runner) GetReporter() events.Reporter {
	return r.reporter
}

// Run starts the TUI and executes fn with progress reporting. It returns
// fn's error once both the run and the interface have finished. Log output
// produced during the run is buffered and written to stdout after the
// alternate screen closes.
func (r *Runner) Run(ctx context.Context, fn RunFunc) error {
	logBuf := new(bytes.Buffer)
	runCtx := ctxlog.NewWithWriter(ctx, logBuf)

	runDone := make(chan error, 1)

	go func() {
		runDone <- fn(runCtx)
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var runErr error

	select {
	case runErr = <-runDone:
		// The run finished first. Tell the TUI and wait for the user to
		// leave the alternate screen.
		r.program.Send(RunCompletedMsg{Err: runErr})
		<-tuiDone
		r.reporter.Close()

	case <-tuiDone:
		// The user quit the interface. The run keeps going until its
		// context is cancelled or it completes.
		r.reporter.Close()

		select {
		case runErr = <-runDone:
		case <-ctx.Done():
			runErr = ctx.Err()
		}

	case <-ctx.Done():
		r.reporter.Close()
		r.program.Quit()
		<-tuiDone

		select {
		case runErr = <-runDone:
		default:
			runErr = ctx.Err()
		}
	}

	if logBuf.Len() > 0 {
		_, _ = logBuf.WriteTo(os.Stdout)
	}

	return runErr
}
