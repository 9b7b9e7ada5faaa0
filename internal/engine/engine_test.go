// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/matt-FFFFFF/autobatch/internal/batch"
	"github.com/matt-FFFFFF/autobatch/internal/progress"
	"github.com/matt-FFFFFF/autobatch/internal/runctx"
	"github.com/matt-FFFFFF/autobatch/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor records executed steps and raises configured signals.
type fakeExecutor struct {
	executed []string
	vars     []map[string]string
	failOn   map[string]error
}

func (f *fakeExecutor) Execute(_ context.Context, step *script.Step, vars map[string]string) error {
	f.executed = append(f.executed, step.Cmd)
	f.vars = append(f.vars, vars)

	if err, ok := f.failOn[step.Cmd]; ok {
		return err
	}

	return nil
}

func testContext(t *testing.T, sel string) *runctx.RunContext {
	t.Helper()

	s, err := script.Parse([]byte(`
name: demo
systems:
  web: webserver01
vars:
  version: "1.0"
pipeline:
  - cmd: one
  - cmd: two
    system: web
  - cmd: three
`))
	require.NoError(t, err)

	if sel != "" {
		s.Selection, err = script.ParseSelection(sel)
		require.NoError(t, err)
	}

	return runctx.Build(s, batch.Row{}, 1)
}

func TestEngineRunsStepsInOrder(t *testing.T) {
	exec := &fakeExecutor{}
	e := New(exec, nil)

	require.NoError(t, e.Run(context.Background(), testContext(t, "")))
	assert.Equal(t, []string{"one", "two", "three"}, exec.executed)
}

func TestEngineHonoursSelection(t *testing.T) {
	exec := &fakeExecutor{}
	e := New(exec, nil)

	require.NoError(t, e.Run(context.Background(), testContext(t, "e2")))
	assert.Equal(t, []string{"one", "three"}, exec.executed)
}

func TestEngineStopsOnSkipSignal(t *testing.T) {
	exec := &fakeExecutor{failOn: map[string]error{"two": &SkipError{Reason: "not needed"}}}
	e := New(exec, nil)

	err := e.Run(context.Background(), testContext(t, ""))

	skip := new(SkipError)
	require.ErrorAs(t, err, &skip)
	assert.Equal(t, "not needed", skip.Reason)
	assert.Equal(t, []string{"one", "two"}, exec.executed)
}

func TestEngineStopsOnAbortSignal(t *testing.T) {
	exec := &fakeExecutor{failOn: map[string]error{"one": &AbortError{Code: 7}}}
	e := New(exec, nil)

	err := e.Run(context.Background(), testContext(t, ""))

	abort := new(AbortError)
	require.ErrorAs(t, err, &abort)
	assert.Equal(t, 7, abort.Code)
	assert.Equal(t, []string{"one"}, exec.executed)
}

func TestEnginePropagatesExecutionErrors(t *testing.T) {
	boom := errors.New("boom")
	exec := &fakeExecutor{failOn: map[string]error{"three": boom}}
	e := New(exec, nil)

	err := e.Run(context.Background(), testContext(t, ""))
	require.ErrorIs(t, err, boom)
}

func TestEngineCancelledContextIsUserInterrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExecutor{}
	e := New(exec, nil)

	err := e.Run(ctx, testContext(t, ""))
	require.ErrorIs(t, err, ErrUserInterrupt)
	assert.Empty(t, exec.executed)
}

func TestEngineBindsSystemVarsPrivately(t *testing.T) {
	exec := &fakeExecutor{}
	e := New(exec, nil)

	rc := testContext(t, "")
	require.NoError(t, e.Run(context.Background(), rc))

	// Step two is bound to a system; its bindings are a private copy.
	assert.Equal(t, "web", exec.vars[1]["system"])
	assert.Equal(t, "webserver01", exec.vars[1]["node"])

	// The context's own bindings stay untouched.
	assert.NotContains(t, rc.Variables, "system")
	assert.NotContains(t, exec.vars[0], "system")
	assert.NotContains(t, exec.vars[2], "system")
}

func TestEngineReportsProgress(t *testing.T) {
	cr := progress.NewChannelReporter(context.Background(), 16)
	exec := &fakeExecutor{failOn: map[string]error{"three": &SkipError{Reason: "done early"}}}
	e := New(exec, cr)

	require.Error(t, e.Run(context.Background(), testContext(t, "")))
	cr.Close()

	var types []progress.EventType
	for ev := range cr.Events() {
		types = append(types, ev.Type)
	}

	assert.Equal(t, []progress.EventType{
		progress.EventStepStarted, progress.EventStepCompleted,
		progress.EventStepStarted, progress.EventStepCompleted,
		progress.EventStepStarted, progress.EventFailed,
	}, types)
}
