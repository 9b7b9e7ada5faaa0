// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matt-FFFFFF/autobatch/internal/batch"
	"github.com/matt-FFFFFF/autobatch/internal/ctxlog"
	"github.com/matt-FFFFFF/autobatch/internal/engine"
	"github.com/matt-FFFFFF/autobatch/internal/runctx"
	"github.com/matt-FFFFFF/autobatch/internal/script"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
)

const (
	preparedPrefix   = "auto"
	finishedSuffix   = "_finished"
	rendezvousOK     = "ok"
	rendezvousFailed = "failed"
)

var (
	// ErrNoBatchItems is returned when a parallel run is requested without
	// any batch rows.
	ErrNoBatchItems = errors.New("no batch items to dispatch")
	// ErrPrepareRun is returned when the prepared run directory cannot be
	// populated.
	ErrPrepareRun = errors.New("failed to prepare parallel run")
	// ErrRendezvous is returned when the completion rendezvous breaks down.
	ErrRendezvous = errors.New("rendezvous with overview process failed")
	// ErrRendezvousTimeout is returned when the overview process does not
	// report completion within the configured window.
	ErrRendezvousTimeout = errors.New("timed out waiting for overview process")
	// ErrParallelRunFailed is returned when the overview process reports
	// that one or more batch items failed.
	ErrParallelRunFailed = errors.New("one or more batch items failed")
)

// Dispatcher runs batch items in parallel by serializing one run context per
// row into a private directory, launching an overview process over that
// directory and blocking until the overview reports completion through a
// named pipe.
type Dispatcher struct {
	launcher OverviewLauncher

	// RendezvousTimeout bounds the wait for the overview's completion
	// report. Zero means wait indefinitely.
	RendezvousTimeout time.Duration

	// KeepDir disables removal of the prepared run directory, for
	// post-mortem inspection.
	KeepDir bool
}

// NewDispatcher creates a dispatcher that starts the overview with the given
// launcher.
func NewDispatcher(launcher OverviewLauncher) *Dispatcher {
	return &Dispatcher{launcher: launcher}
}

// Dispatch prepares and runs all batch rows in parallel. It returns once the
// overview process has reported that every item finished, or earlier on
// cancellation or timeout. The prepared directory is removed on return unless
// KeepDir is set.
func (d *Dispatcher) Dispatch(ctx context.Context, template *script.Script, rows []batch.Row) error {
	if len(rows) == 0 {
		return ErrNoBatchItems
	}

	dir, err := os.MkdirTemp("", "autobatch-")
	if err != nil {
		return errors.Join(ErrPrepareRun, err)
	}

	if !d.KeepDir {
		defer os.RemoveAll(dir) //nolint:errcheck
	}

	fifo, err := d.prepare(dir, template, rows)
	if err != nil {
		return err
	}

	ctxlog.Info(ctx, "dispatching batch items", "count", len(rows), "dir", dir)

	if err := d.launcher.LaunchOverview(ctx, dir); err != nil {
		return err
	}

	return d.awaitRendezvous(ctx, fifo)
}

// prepare writes one serialized run context per row and creates the named
// pipe the overview will report completion on. It returns the pipe's path.
func (d *Dispatcher) prepare(dir string, template *script.Script, rows []batch.Row) (string, error) {
	fsys := afero.NewOsFs()

	for i, row := range rows {
		rc := runctx.Build(template, row, i+1)

		path := filepath.Join(dir, fmt.Sprintf("%s%d", preparedPrefix, i+1))
		if err := runctx.WriteFile(fsys, path, rc); err != nil {
			return "", errors.Join(ErrPrepareRun, err)
		}
	}

	fifo := filepath.Join(dir, fmt.Sprintf("%d%s", time.Now().Unix(), finishedSuffix))
	if err := unix.Mkfifo(fifo, 0o600); err != nil {
		return "", errors.Join(ErrPrepareRun, err)
	}

	return fifo, nil
}

// awaitRendezvous blocks until the overview writes its completion line to the
// pipe. The pipe is opened read-write so the open itself never blocks; the
// read is abandoned by closing the pipe on cancellation or timeout.
func (d *Dispatcher) awaitRendezvous(ctx context.Context, fifo string) error {
	f, err := os.OpenFile(fifo, os.O_RDWR, 0)
	if err != nil {
		return errors.Join(ErrRendezvous, err)
	}

	defer f.Close() //nolint:errcheck

	lines := make(chan string, 1)
	readErrs := make(chan error, 1)

	go func() {
		line, err := bufio.NewReader(f).ReadString('\n')
		if err != nil {
			readErrs <- err
			return
		}

		lines <- strings.TrimSpace(line)
	}()

	var timeout <-chan time.Time

	if d.RendezvousTimeout > 0 {
		timer := time.NewTimer(d.RendezvousTimeout)
		defer timer.Stop()

		timeout = timer.C
	}

	select {
	case line := <-lines:
		ctxlog.Info(ctx, "overview reported completion", "status", line)

		if line != rendezvousOK {
			return ErrParallelRunFailed
		}

		return nil
	case err := <-readErrs:
		return errors.Join(ErrRendezvous, err)
	case <-ctx.Done():
		f.Close() //nolint:errcheck,gosec
		return engine.ErrUserInterrupt
	case <-timeout:
		f.Close() //nolint:errcheck,gosec
		return ErrRendezvousTimeout
	}
}
