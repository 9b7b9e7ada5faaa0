// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"errors"
	"fmt"
)

// InterruptExitCode is the process exit status used when a run is aborted by
// the user.
const InterruptExitCode = 130

// ErrUserInterrupt is returned when execution is cancelled by an external
// interruption. The orchestrator maps it to InterruptExitCode.
var ErrUserInterrupt = errors.New("aborted by user")

// SkipError signals that the remainder of the current batch item's steps
// should be abandoned and the batch loop should move on to the next item.
// It is interpreted only at the batch-loop boundary and never terminates the
// whole run.
type SkipError struct {
	Reason string
}

// Error implements the error interface for SkipError.
func (e *SkipError) Error() string {
	return "skip batch item: " + e.Reason
}

// AbortError signals that the entire orchestration must terminate
// immediately with the given process exit status.
type AbortError struct {
	Code int
}

// Error implements the error interface for AbortError.
func (e *AbortError) Error() string {
	return fmt.Sprintf("abort requested with exit code %d", e.Code)
}
