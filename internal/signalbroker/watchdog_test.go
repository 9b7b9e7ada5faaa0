// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/autobatch/internal/ctxlog"
	"github.com/stretchr/testify/assert"
)

func TestWatchFirstSignalCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := make(chan os.Signal, 1)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, cancel)
	}()

	sigCh <- os.Interrupt

	select {
	case <-ctx.Done():
		// expected
	case <-time.After(time.Second):
		t.Fatal("context should be cancelled after first signal")
	}

	close(sigCh)
	wg.Wait()
}

func TestWatchSecondSignalStopsListening(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := make(chan os.Signal, 2)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		Watch(ctx, sigCh, cancel)
	}()

	sigCh <- os.Interrupt
	sigCh <- os.Interrupt

	wg.Wait()

	assert.Error(t, ctx.Err())

	// Watch closed the channel on the duplicate signal.
	_, open := <-sigCh
	assert.False(t, open)
}
