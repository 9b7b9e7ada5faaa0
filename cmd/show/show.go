// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show implements the show command, which inspects a serialized run
// context prepared for a parallel run.
package show

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/autobatch/internal/runctx"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

const (
	fileArg = "file"
)

var (
	// ErrNoFile is returned when no context file is given.
	ErrNoFile = errors.New("no run context file provided")
	// ErrEncodeScript is returned when the decoded script cannot be rendered.
	ErrEncodeScript = errors.New("failed to render script")
)

// ShowCmd is the command that displays a serialized run context.
var ShowCmd = &cli.Command{
	Name:        "show",
	Description: "Show a serialized run context prepared for a parallel run.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name:      fileArg,
			UsageText: "CONTEXTFILE",
		},
	},
	Action: func(_ context.Context, cmd *cli.Command) error {
		file := cmd.StringArg(fileArg)
		if file == "" {
			return ErrNoFile
		}

		rc, err := runctx.ReadFile(afero.NewOsFs(), file)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.Writer, "run ID:        %s\n", rc.RunID)
		fmt.Fprintf(cmd.Writer, "batch index:   %d\n", rc.BatchIndex)
		fmt.Fprintf(cmd.Writer, "command count: %d\n", rc.CommandCount)

		fmt.Fprintln(cmd.Writer, "variables:")

		names := make([]string, 0, len(rc.Variables))
		for name := range rc.Variables {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			fmt.Fprintf(cmd.Writer, "  %s: %s\n", name, rc.Variables[name])
		}

		data, err := yaml.Marshal(rc.Script)
		if err != nil {
			return errors.Join(ErrEncodeScript, err)
		}

		fmt.Fprintln(cmd.Writer, "script:")
		fmt.Fprintln(cmd.Writer, string(data))

		return nil
	},
}
