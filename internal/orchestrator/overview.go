// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/autobatch/internal/ctxlog"
)

var (
	// ErrReadRunDir is returned when the prepared run directory cannot be
	// scanned.
	ErrReadRunDir = errors.New("failed to read prepared run directory")
	// ErrNoPreparedContexts is returned when the prepared run directory
	// contains no run context files.
	ErrNoPreparedContexts = errors.New("no prepared run contexts found")
	// ErrNoRendezvousPipe is returned when the prepared run directory has no
	// completion pipe.
	ErrNoRendezvousPipe = errors.New("no rendezvous pipe found")
)

// Overview supervises one parallel run: it launches a child process per
// prepared run context, waits for all of them and reports the aggregate
// outcome on the run directory's named pipe.
type Overview struct {
	runner ChildRunner
}

// NewOverview creates an overview that executes prepared contexts with the
// given runner.
func NewOverview(runner ChildRunner) *Overview {
	return &Overview{runner: runner}
}

// Run executes every prepared run context in dir concurrently, aggregates
// their failures and writes the completion line to the rendezvous pipe. The
// returned error carries every child failure.
func (o *Overview) Run(ctx context.Context, dir string) error {
	files, fifo, err := scanRunDir(dir)
	if err != nil {
		return err
	}

	ctxlog.Info(ctx, "overview started", "items", len(files), "dir", dir)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		merr *multierror.Error
	)

	for _, file := range files {
		wg.Add(1)

		go func(file string) {
			defer wg.Done()

			if err := o.runner.RunChild(ctx, file); err != nil {
				ctxlog.Error(ctx, "batch item failed", "file", filepath.Base(file), "error", err)

				mu.Lock()
				merr = multierror.Append(merr, err)
				mu.Unlock()
			}
		}(file)
	}

	wg.Wait()

	status := rendezvousOK
	if merr.ErrorOrNil() != nil {
		status = rendezvousFailed
	}

	if err := reportCompletion(fifo, status); err != nil {
		merr = multierror.Append(merr, err)
	}

	return merr.ErrorOrNil()
}

// scanRunDir finds the prepared run context files, ordered by batch index,
// and the rendezvous pipe.
func scanRunDir(dir string) ([]string, string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, "", errors.Join(ErrReadRunDir, err)
	}

	type prepared struct {
		index int
		path  string
	}

	var (
		files []prepared
		fifo  string
	)

	for _, entry := range entries {
		name := entry.Name()

		if strings.HasSuffix(name, finishedSuffix) {
			fifo = filepath.Join(dir, name)
			continue
		}

		index, err := strconv.Atoi(strings.TrimPrefix(name, preparedPrefix))
		if !strings.HasPrefix(name, preparedPrefix) || err != nil {
			continue
		}

		files = append(files, prepared{index: index, path: filepath.Join(dir, name)})
	}

	if len(files) == 0 {
		return nil, "", ErrNoPreparedContexts
	}

	if fifo == "" {
		return nil, "", ErrNoRendezvousPipe
	}

	sort.Slice(files, func(i, j int) bool { return files[i].index < files[j].index })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}

	return paths, fifo, nil
}

// reportCompletion writes the aggregate status line to the rendezvous pipe.
func reportCompletion(fifo, status string) error {
	f, err := os.OpenFile(fifo, os.O_WRONLY, 0)
	if err != nil {
		return errors.Join(ErrRendezvous, err)
	}

	defer f.Close() //nolint:errcheck

	if _, err := f.WriteString(status + "\n"); err != nil {
		return errors.Join(ErrRendezvous, err)
	}

	return nil
}
