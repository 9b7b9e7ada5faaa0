// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
)

// ChannelReporter implements Reporter using a buffered Go channel.
// It is safe for concurrent use.
type ChannelReporter struct {
	ch     chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewChannelReporter creates a new ChannelReporter with the specified buffer
// size. A larger buffer reduces the chance of dropping events under load.
func NewChannelReporter(ctx context.Context, bufferSize int) *ChannelReporter {
	reporterCtx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan Event, bufferSize),
		ctx:    reporterCtx,
		cancel: cancel,
	}
}

// Report implements Reporter.Report. It never blocks; if the channel is full
// or the reporter is closed, the event is dropped.
func (cr *ChannelReporter) Report(event Event) {
	select {
	case <-cr.ctx.Done():
		return
	default:
	}

	select {
	case cr.ch <- event:
	case <-cr.ctx.Done():
	default:
	}
}

// Close implements Reporter.Close. It closes the channel and cancels the
// reporter context; subsequent calls are no-ops.
func (cr *ChannelReporter) Close() {
	cr.once.Do(func() {
		cr.cancel()
		close(cr.ch)
		cr.wg.Wait()
	})
}

// Listen forwards events to the provided listener from a background
// goroutine until the reporter is closed.
func (cr *ChannelReporter) Listen(listener Listener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for {
			select {
			case event, ok := <-cr.ch:
				if !ok {
					return
				}

				listener.OnEvent(event)
			case <-cr.ctx.Done():
				return
			}
		}
	}()
}

// Events returns a read-only channel of progress events, for callers that
// want to consume events directly instead of via a Listener.
func (cr *ChannelReporter) Events() <-chan Event {
	return cr.ch
}
