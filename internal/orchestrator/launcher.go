// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
)

const defaultScreen = "screen"

// ErrLaunchOverview is returned when the overview process cannot be started.
var ErrLaunchOverview = errors.New("failed to launch overview process")

// OverviewLauncher starts the overview process for a prepared run directory.
type OverviewLauncher interface {
	LaunchOverview(ctx context.Context, dir string) error
}

// ScreenLauncher starts the overview in a detached terminal multiplexer
// session so it survives independently of the dispatching process.
type ScreenLauncher struct {
	Screen string // multiplexer binary, defaults to screen
	Self   string // path to this executable, defaults to os.Executable()
}

var _ OverviewLauncher = (*ScreenLauncher)(nil)

// LaunchOverview implements the OverviewLauncher interface.
func (l *ScreenLauncher) LaunchOverview(_ context.Context, dir string) error {
	self := l.Self
	if self == "" {
		exe, err := os.Executable()
		if err != nil {
			return errors.Join(ErrLaunchOverview, err)
		}

		self = exe
	}

	screen := l.Screen
	if screen == "" {
		screen = defaultScreen
	}

	session := filepath.Base(dir) + "_overview"

	// Not bound to the dispatcher's context: the session must keep running
	// while the dispatcher blocks on the rendezvous.
	cmd := exec.Command(screen, "-d", "-m", "-S", session, self, "run", "--overview", dir)
	if err := cmd.Start(); err != nil {
		return errors.Join(ErrLaunchOverview, err)
	}

	return cmd.Process.Release()
}

// ChildRunner executes one prepared run context file in a separate process
// and waits for it to finish.
type ChildRunner interface {
	RunChild(ctx context.Context, file string) error
}

// ExecChildRunner runs prepared contexts by re-invoking this executable.
type ExecChildRunner struct {
	Self string // path to this executable, defaults to os.Executable()
}

var _ ChildRunner = (*ExecChildRunner)(nil)

// RunChild implements the ChildRunner interface.
func (r *ExecChildRunner) RunChild(ctx context.Context, file string) error {
	self := r.Self
	if self == "" {
		exe, err := os.Executable()
		if err != nil {
			return err
		}

		self = exe
	}

	cmd := exec.CommandContext(ctx, self, "run", "--prepared-from-file", file)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}
