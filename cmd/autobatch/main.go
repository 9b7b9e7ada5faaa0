// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the autobatch command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/autobatch"
	"github.com/matt-FFFFFF/autobatch/cmd"
	"github.com/matt-FFFFFF/autobatch/internal/ctxlog"
	"github.com/matt-FFFFFF/autobatch/internal/signalbroker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	cmd.RootCmd.Version = fmt.Sprintf("%s (commit: %s)", autobatch.Version, autobatch.Commit)

	if err := cmd.RootCmd.Run(ctx, os.Args); err != nil {
		ctxlog.Logger(ctx).Error("run failed", "error", err)
		os.Exit(1)
	}
}
