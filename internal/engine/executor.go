// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/autobatch/internal/ctxlog"
	"github.com/matt-FFFFFF/autobatch/internal/script"
)

var (
	// ErrStepFailed is returned when a step's command exits with a code that
	// is neither a success, skip nor abort code.
	ErrStepFailed = errors.New("step execution failed")
	// ErrCouldNotStartProcess is returned when the step's process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
)

const (
	defaultShell  = "/bin/sh"
	defaultSSHCmd = "ssh"
)

// Executor is the pluggable step-execution backend. An implementation runs
// one step given the run's variable bindings and returns nil, a control
// signal (*SkipError, *AbortError, ErrUserInterrupt) or an execution error.
type Executor interface {
	Execute(ctx context.Context, step *script.Step, vars map[string]string) error
}

// ShellExecutor runs step commands through the shell. Steps bound to a
// system are executed on the remote host over SSH; the plain executor treats
// the node name as the remote hostname.
type ShellExecutor struct {
	Shell  string // shell binary, defaults to /bin/sh
	SSHCmd string // remote execution binary, defaults to ssh
	Stdout *os.File
	Stderr *os.File
}

var _ Executor = (*ShellExecutor)(nil)

// NewShellExecutor creates a ShellExecutor with defaults applied.
func NewShellExecutor() *ShellExecutor {
	return &ShellExecutor{
		Shell:  defaultShell,
		SSHCmd: defaultSSHCmd,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Execute implements the Executor interface.
func (e *ShellExecutor) Execute(ctx context.Context, step *script.Step, vars map[string]string) error {
	if step.System != "" && vars["hostname"] == "" {
		// Without an inventory the node name is the canonical hostname.
		vars["hostname"] = vars["node"]
	}

	return e.run(ctx, step, vars)
}

func (e *ShellExecutor) run(ctx context.Context, step *script.Step, vars map[string]string) error {
	cmdLine := Expand(step.Cmd, vars)

	shell := e.Shell
	if shell == "" {
		shell = defaultShell
	}

	if step.System != "" {
		sshCmd := e.SSHCmd
		if sshCmd == "" {
			sshCmd = defaultSSHCmd
		}

		cmdLine = sshCmd + " " + vars["hostname"] + " -- " + shellQuote(cmdLine)
	}

	ctxlog.Debug(ctx, "executing step", "cmd", cmdLine)

	cmd := exec.CommandContext(ctx, shell, "-c", cmdLine)
	cmd.Stdin = os.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		return ErrUserInterrupt
	}

	code := 0

	if err != nil {
		exitErr := new(exec.ExitError)
		if !errors.As(err, &exitErr) {
			return errors.Join(ErrCouldNotStartProcess, err)
		}

		code = exitErr.ExitCode()
	}

	return classifyExitCode(step, code)
}

// classifyExitCode maps a step's exit code onto the control-flow contract.
func classifyExitCode(step *script.Step, code int) error {
	success := step.SuccessExitCodes
	if success == nil {
		success = []int{0}
	}

	switch {
	case slices.Contains(success, code):
		return nil
	case slices.Contains(step.SkipExitCodes, code):
		return &SkipError{Reason: fmt.Sprintf("step exited with skip code %d", code)}
	case slices.Contains(step.AbortExitCodes, code):
		return &AbortError{Code: code}
	default:
		return fmt.Errorf("%w: exit code %d", ErrStepFailed, code)
	}
}

// Expand substitutes {name} variable references in s. Unknown references are
// left untouched.
func Expand(s string, vars map[string]string) string {
	if len(vars) == 0 {
		return s
	}

	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}

	return strings.NewReplacer(pairs...).Replace(s)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
