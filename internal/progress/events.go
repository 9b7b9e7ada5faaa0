// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress defines the event stream emitted during script execution.
// The engine and the orchestrators report events; the TUI and other
// monitoring surfaces listen to them.
package progress

import (
	"time"
)

// Event represents a real-time update from script execution.
type Event struct {
	ItemIndex int       // 1-based batch item index
	ItemCount int       // total batch items in this run
	StepIndex int       // 1-based step position within the script
	StepCount int       // resolved command counter for the item
	Label     string    // human-readable step or item label
	Type      EventType // what happened
	Timestamp time.Time // when it happened
	Data      EventData // type-specific data
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventItemStarted indicates a batch item has begun execution.
	EventItemStarted EventType = iota
	// EventStepStarted indicates a step has begun execution.
	EventStepStarted
	// EventStepCompleted indicates a step finished successfully.
	EventStepCompleted
	// EventItemCompleted indicates a batch item finished successfully.
	EventItemCompleted
	// EventItemSkipped indicates the remainder of a batch item was abandoned.
	EventItemSkipped
	// EventFailed indicates a step or item failed.
	EventFailed
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventItemStarted:
		return "item-started"
	case EventStepStarted:
		return "step-started"
	case EventStepCompleted:
		return "step-completed"
	case EventItemCompleted:
		return "item-completed"
	case EventItemSkipped:
		return "item-skipped"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EventData contains type-specific information for progress events.
type EventData struct {
	Reason   string // for EventItemSkipped
	ExitCode int    // for EventFailed
	Error    error  // for EventFailed
}

// Reporter is the interface for sending progress events. Implementations
// must be non-blocking and tolerate a receiver that is not listening.
type Reporter interface {
	Report(event Event)
	Close()
}

// Listener receives progress events. Implementations should handle events
// quickly to avoid blocking the reporting goroutine.
type Listener interface {
	OnEvent(event Event)
}

// NullReporter is a no-op implementation of Reporter.
type NullReporter struct{}

// Report implements Reporter.Report by doing nothing.
func (nr *NullReporter) Report(_ Event) {}

// Close implements Reporter.Close by doing nothing.
func (nr *NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return &NullReporter{}
}
