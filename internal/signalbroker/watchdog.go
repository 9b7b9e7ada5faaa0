// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/autobatch/internal/ctxlog"
)

// Watch monitors the signal channel and handles signals.
// The first signal of a type cancels the context so the batch loop can wind
// down in an orderly way. A second signal of the same type closes the channel
// and returns, leaving forceful termination to the runtime.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	sigMap := make(map[os.Signal]struct{})
	for sig := range sigCh {
		if _, ok := sigMap[sig]; ok {
			ctxlog.Logger(ctx).Warn("watchdog", "detail", "received second signal of type, stop listening", "signal", sig.String())
			close(sigCh)

			return
		}

		ctxlog.Logger(ctx).Warn("watchdog", "detail", "received signal, cancelling run", "signal", sig.String())
		sigMap[sig] = struct{}{}

		cancel()
	}
}
