// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a real-time terminal user interface for monitoring
// batch runs. It shows one row per batch item with a status indicator, the
// item's step progress and, on failure, the error. The interface consumes
// the progress event stream emitted by the execution engine and the
// orchestrator.
package tui
