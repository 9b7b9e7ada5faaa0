// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/matt-FFFFFF/autobatch/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyExitCode(t *testing.T) {
	testCases := []struct {
		name string
		step *script.Step
		code int
		want func(t *testing.T, err error)
	}{
		{
			name: "default success",
			step: &script.Step{Cmd: "x"},
			code: 0,
			want: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "custom success codes",
			step: &script.Step{Cmd: "x", SuccessExitCodes: []int{0, 2}},
			code: 2,
			want: func(t *testing.T, err error) {
				assert.NoError(t, err)
			},
		},
		{
			name: "skip code raises SkipError",
			step: &script.Step{Cmd: "x", SkipExitCodes: []int{3}},
			code: 3,
			want: func(t *testing.T, err error) {
				skip := new(SkipError)
				require.ErrorAs(t, err, &skip)
				assert.Contains(t, skip.Reason, "3")
			},
		},
		{
			name: "abort code raises AbortError with that code",
			step: &script.Step{Cmd: "x", AbortExitCodes: []int{9}},
			code: 9,
			want: func(t *testing.T, err error) {
				abort := new(AbortError)
				require.ErrorAs(t, err, &abort)
				assert.Equal(t, 9, abort.Code)
			},
		},
		{
			name: "anything else is an execution error",
			step: &script.Step{Cmd: "x"},
			code: 1,
			want: func(t *testing.T, err error) {
				require.ErrorIs(t, err, ErrStepFailed)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.want(t, classifyExitCode(tc.step, tc.code))
		})
	}
}

func TestExpand(t *testing.T) {
	vars := map[string]string{"version": "1.0", "host": "a"}

	assert.Equal(t, "deploy 1.0 to a", Expand("deploy {version} to {host}", vars))
	assert.Equal(t, "no refs", Expand("no refs", vars))
	assert.Equal(t, "{unknown} stays", Expand("{unknown} stays", vars))
	assert.Equal(t, "plain", Expand("plain", nil))
}

func TestShellExecutorRunsCommands(t *testing.T) {
	e := NewShellExecutor()
	ctx := context.Background()

	require.NoError(t, e.Execute(ctx, &script.Step{Cmd: "true"}, nil))

	err := e.Execute(ctx, &script.Step{Cmd: "exit 1"}, nil)
	require.ErrorIs(t, err, ErrStepFailed)

	err = e.Execute(ctx, &script.Step{Cmd: "exit 3", SkipExitCodes: []int{3}}, nil)
	skip := new(SkipError)
	require.ErrorAs(t, err, &skip)

	err = e.Execute(ctx, &script.Step{Cmd: "exit 42", AbortExitCodes: []int{42}}, nil)
	abort := new(AbortError)
	require.ErrorAs(t, err, &abort)
	assert.Equal(t, 42, abort.Code)
}

func TestShellExecutorExpandsVariables(t *testing.T) {
	e := NewShellExecutor()

	err := e.Execute(context.Background(), &script.Step{Cmd: "test {answer} = 42"}, map[string]string{"answer": "42"})
	require.NoError(t, err)
}

func TestShellExecutorCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewShellExecutor()

	err := e.Execute(ctx, &script.Step{Cmd: "sleep 10"}, nil)
	require.ErrorIs(t, err, ErrUserInterrupt)
}

type staticInventory struct {
	hosts map[string]Host
}

func (s *staticInventory) Resolve(name string) (Host, error) {
	host, ok := s.hosts[name]
	if !ok {
		return Host{}, errors.New("unknown node " + name)
	}

	return host, nil
}

func TestInfraExecutorResolvesHostname(t *testing.T) {
	inv := &staticInventory{hosts: map[string]Host{
		"webserver01": {Name: "webserver01", Hostname: "web01.example.com"},
	}}

	e := NewInfraExecutor(inv)
	// Run through the shell with a command that asserts the hostname binding
	// instead of actually reaching out over SSH.
	e.SSHCmd = "echo"

	vars := map[string]string{"node": "webserver01"}
	step := &script.Step{Cmd: "uptime", System: "web"}

	require.NoError(t, e.Execute(context.Background(), step, vars))
	assert.Equal(t, "web01.example.com", vars["hostname"])
}

func TestInfraExecutorUnknownNode(t *testing.T) {
	e := NewInfraExecutor(&staticInventory{})

	err := e.Execute(context.Background(), &script.Step{Cmd: "uptime", System: "web"}, map[string]string{"node": "nope"})
	require.ErrorIs(t, err, ErrResolveSystem)
}

func TestShellExecutorTreatsNodeAsHostname(t *testing.T) {
	e := NewShellExecutor()
	e.SSHCmd = "echo"

	vars := map[string]string{"node": "web01"}

	require.NoError(t, e.Execute(context.Background(), &script.Step{Cmd: "uptime", System: "web"}, vars))
	assert.Equal(t, "web01", vars["hostname"])
}
