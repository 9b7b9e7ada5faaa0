// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the run command: the batch loop, the parallel
// dispatch entry point and the two internal process entry points used by
// parallel runs.
package run

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/matt-FFFFFF/autobatch"
	"github.com/matt-FFFFFF/autobatch/internal/batch"
	"github.com/matt-FFFFFF/autobatch/internal/ctxlog"
	"github.com/matt-FFFFFF/autobatch/internal/engine"
	"github.com/matt-FFFFFF/autobatch/internal/orchestrator"
	"github.com/matt-FFFFFF/autobatch/internal/runctx"
	"github.com/matt-FFFFFF/autobatch/internal/script"
	"github.com/matt-FFFFFF/autobatch/internal/toolconfig"
	"github.com/matt-FFFFFF/autobatch/internal/tui"
	"github.com/peterh/liner"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	scriptArg = "script"

	varsFileFlag          = "vars-file"
	stepsFlag             = "steps"
	parallelFlag          = "parallel"
	preparedFromFileFlag  = "prepared-from-file"
	overviewFlag          = "overview"
	rendezvousTimeoutFlag = "rendezvous-timeout"
	tuiFlag               = "tui"
	debugFlag             = "debug"
	configFlag            = "config"

	// shellGuardEnv marks an environment where step commands already run
	// inside a managed shell. Starting a nested run there is usually a
	// mistake, so it requires confirmation.
	shellGuardEnv = "AUTOBATCH_SHELL"
	// timeReportEnv enables the elapsed-time report at the end of a run.
	timeReportEnv = "AUTOBATCH_TIME"
)

var (
	// ErrNoScript is returned when no script argument is given.
	ErrNoScript = errors.New("no script file provided")
	// ErrParallelNeedsVarsFile is returned when a parallel run is requested
	// without a batch source.
	ErrParallelNeedsVarsFile = errors.New("parallel mode requires a vars file")
	// ErrNotConfirmed is returned when the nested-shell guard is declined.
	ErrNotConfirmed = errors.New("run not confirmed")
)

// RunCmd is the command that runs a script against its batch items.
var RunCmd = &cli.Command{
	Name:        "run",
	Description: "Run a script of ordered steps against one or more batch items.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      scriptArg,
			UsageText: "SCRIPT",
			Config: cli.StringConfig{
				TrimSpace: true,
			},
		},
	},
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      varsFileFlag,
			Aliases:   []string{"v"},
			Usage:     "CSV file with a header row of field names, one batch item per record",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:    stepsFlag,
			Aliases: []string{"s"},
			Usage:   "step selection, e.g. '1,3' to run steps 1 and 3 or 'e2' to exclude step 2",
		},
		&cli.BoolFlag{
			Name:    parallelFlag,
			Aliases: []string{"p"},
			Usage:   "run batch items in parallel, one process per item",
		},
		&cli.StringFlag{
			Name:      preparedFromFileFlag,
			Usage:     "internal: execute one serialized run context",
			TakesFile: true,
			Hidden:    true,
		},
		&cli.StringFlag{
			Name:   overviewFlag,
			Usage:  "internal: supervise the prepared run contexts in a directory",
			Hidden: true,
		},
		&cli.DurationFlag{
			Name:  rendezvousTimeoutFlag,
			Usage: "give up waiting for a parallel run after this duration (0 waits forever)",
		},
		&cli.BoolFlag{
			Name:    tuiFlag,
			Aliases: []string{"t"},
			Usage:   "show an interactive progress interface",
		},
		&cli.BoolFlag{
			Name:    debugFlag,
			Aliases: []string{"d"},
			Usage:   "enable debug logging",
		},
		&cli.StringFlag{
			Name:      configFlag,
			Usage:     "path to the tool configuration file",
			TakesFile: true,
		},
	},
	Action: actionFunc,
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool(debugFlag) {
		ctxlog.LevelVar.Set(slog.LevelDebug)
	}

	ctxlog.Info(ctx, "autobatch", "version", autobatch.Version, "commit", autobatch.Commit)

	fsys := afero.NewOsFs()

	cfg, err := toolconfig.Load(fsys, cmd.String(configFlag))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	// Internal entry points used by parallel runs.
	if dir := cmd.String(overviewFlag); dir != "" {
		return exitFromError(runOverview(ctx, dir))
	}

	if file := cmd.String(preparedFromFileFlag); file != "" {
		return exitFromError(runPrepared(ctx, cfg, fsys, file))
	}

	if cmd.StringArg(scriptArg) == "" {
		return cli.Exit(ErrNoScript.Error(), 1)
	}

	if err := confirmNestedShell(); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	start := time.Now()
	err = runScript(ctx, cmd, cfg, fsys)

	if os.Getenv(timeReportEnv) != "" {
		ctxlog.Info(ctx, "run finished", "elapsed", time.Since(start).Round(time.Second).String())
	}

	return exitFromError(err)
}

// runScript loads the script and its batch rows, then hands off to the
// sequential orchestrator or the parallel dispatcher.
func runScript(ctx context.Context, cmd *cli.Command, cfg *toolconfig.Config, fsys afero.Fs) error {
	parallel := cmd.Bool(parallelFlag)

	s, err := script.Load(ctx, fsys, cmd.StringArg(scriptArg))
	if err != nil {
		return err
	}

	if sel := cmd.String(stepsFlag); sel != "" {
		s.Selection, err = script.ParseSelection(sel)
		if err != nil {
			return err
		}
	}

	rows := batch.Single()

	if varsFile := cmd.String(varsFileFlag); varsFile != "" {
		rows, err = batch.LoadCSV(fsys, varsFile, s, parallel)
		if err != nil {
			return err
		}
	} else if parallel {
		return ErrParallelNeedsVarsFile
	}

	if parallel {
		dispatcher := orchestrator.NewDispatcher(&orchestrator.ScreenLauncher{Screen: cfg.Screen})
		dispatcher.RendezvousTimeout = cmd.Duration(rendezvousTimeoutFlag)

		return dispatcher.Dispatch(ctx, s, rows)
	}

	executor, err := cfg.NewExecutor(fsys)
	if err != nil {
		return err
	}

	if cmd.Bool(tuiFlag) {
		runner := tui.NewRunner()
		seq := orchestrator.NewSequential(engine.New(executor, runner.GetReporter()), runner.GetReporter())

		return runner.Run(ctx, func(ctx context.Context) error {
			return seq.Run(ctx, s, rows)
		})
	}

	seq := orchestrator.NewSequential(engine.New(executor, nil), nil)

	return seq.Run(ctx, s, rows)
}

// runPrepared executes one serialized run context, the child-process side of
// a parallel run.
func runPrepared(ctx context.Context, cfg *toolconfig.Config, fsys afero.Fs, file string) error {
	rc, err := runctx.ReadFile(fsys, file)
	if err != nil {
		return err
	}

	executor, err := cfg.NewExecutor(fsys)
	if err != nil {
		return err
	}

	seq := orchestrator.NewSequential(engine.New(executor, nil), nil)

	return seq.RunPrepared(ctx, rc)
}

// runOverview supervises a prepared run directory, the overview-process side
// of a parallel run.
func runOverview(ctx context.Context, dir string) error {
	return orchestrator.NewOverview(&orchestrator.ExecChildRunner{}).Run(ctx, dir)
}

// confirmNestedShell prompts for confirmation when the run starts inside an
// environment that is itself executing autobatch steps.
func confirmNestedShell() error {
	if os.Getenv(shellGuardEnv) == "" {
		return nil
	}

	l := liner.NewLiner()
	defer l.Close() //nolint:errcheck

	answer, err := l.Prompt("Warning: you are inside an autobatch-managed shell. Type 'yes' to continue: ")
	if err != nil || answer != "yes" {
		return ErrNotConfirmed
	}

	return nil
}

// exitFromError maps the batch-loop error taxonomy onto process exit codes.
func exitFromError(err error) error {
	if err == nil {
		return nil
	}

	abort := new(engine.AbortError)
	if errors.As(err, &abort) {
		return cli.Exit(abort.Error(), abort.Code)
	}

	if errors.Is(err, engine.ErrUserInterrupt) {
		return cli.Exit(engine.ErrUserInterrupt.Error(), engine.InterruptExitCode)
	}

	return cli.Exit(fmt.Sprintf("run failed: %s", err.Error()), 1)
}
