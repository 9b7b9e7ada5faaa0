// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package cmd contains the command-line interface (CLI) for the module.
package cmd

import (
	"os"

	"github.com/matt-FFFFFF/autobatch/cmd/run"
	"github.com/matt-FFFFFF/autobatch/cmd/show"
	"github.com/urfave/cli/v3"
)

// RootCmd is the root command for the CLI.
var RootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.RunCmd,
		show.ShowCmd,
	},
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "autobatch",
	Description: `Autobatch runs a declarative script of ordered steps against a batch
of items. Each item gets its own isolated execution context built from the
script's variable defaults and one row of a CSV vars file. Items run
sequentially in-process, or fan out across independent OS processes that
rendezvous through the filesystem.`,
	Usage:     "autobatch run myscript.yaml --vars-file items.csv",
	Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	Authors: []any{
		"Matt White (matt-FFFFFF)",
	},
	EnableShellCompletion: true,
}
