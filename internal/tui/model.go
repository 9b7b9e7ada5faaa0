// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	events "github.com/matt-FFFFFF/autobatch/internal/progress"
)

// ItemStatus represents the current state of a batch item in the TUI.
type ItemStatus int

const (
	StatusPending ItemStatus = iota
	StatusRunning
	StatusSkipped
	StatusSuccess
	StatusFailed
)

// String returns a string representation of the item status.
func (s ItemStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSkipped:
		return "skipped"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ItemRow tracks the display state of one batch item.
type ItemRow struct {
	Index      int        // 1-based batch index
	Label      string     // script name
	Status     ItemStatus // current state
	StepsDone  int        // completed steps
	StepCount  int        // resolved command counter
	StepLabel  string     // label of the currently running step
	SkipReason string     // populated for skipped items
	ErrorMsg   string     // populated for failed items
	StartTime  *time.Time
	EndTime    *time.Time
}

// Model is the bubbletea model for a batch run.
type Model struct {
	items     []*ItemRow
	index     map[int]*ItemRow
	itemCount int
	bar       progress.Model
	width     int
	height    int
	quitting  bool
	completed bool
	runErr    error
	mutex     sync.RWMutex

	styles *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Pending lipgloss.Style
	Running lipgloss.Style
	Skipped lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Detail  lipgloss.Style
	Help    lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Skipped: lipgloss.NewStyle().
			Foreground(lipgloss.Color("13")),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Detail: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			MarginTop(1),
	}
}

// NewModel creates a new TUI model.
func NewModel() *Model {
	return &Model{
		index:  make(map[int]*ItemRow),
		bar:    progress.New(progress.WithDefaultGradient()),
		styles: NewStyles(),
	}
}

// getOrCreateRow returns the row for a batch index, creating it on first use.
// Events can arrive for items that were never announced, for example when a
// prepared context starts at an arbitrary index.
func (m *Model) getOrCreateRow(index int, label string) *ItemRow {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if row, ok := m.index[index]; ok {
		if row.Label == "" {
			row.Label = label
		}

		return row
	}

	row := &ItemRow{Index: index, Label: label, Status: StatusPending}
	m.index[index] = row
	m.items = append(m.items, row)

	return row
}

// processEvent folds one progress event into the display state.
func (m *Model) processEvent(event events.Event) {
	switch event.Type {
	case events.EventItemStarted:
		row := m.getOrCreateRow(event.ItemIndex, event.Label)
		now := time.Now()
		row.Status = StatusRunning
		row.StartTime = &now

		if event.ItemCount > m.itemCount {
			m.itemCount = event.ItemCount
		}

	case events.EventStepStarted:
		row := m.getOrCreateRow(event.ItemIndex, "")
		row.Status = StatusRunning
		row.StepLabel = event.Label

		if event.StepCount > row.StepCount {
			row.StepCount = event.StepCount
		}

	case events.EventStepCompleted:
		row := m.getOrCreateRow(event.ItemIndex, "")
		row.StepsDone++

	case events.EventItemCompleted:
		row := m.getOrCreateRow(event.ItemIndex, event.Label)
		now := time.Now()
		row.Status = StatusSuccess
		row.EndTime = &now
		row.StepLabel = ""

	case events.EventItemSkipped:
		row := m.getOrCreateRow(event.ItemIndex, event.Label)
		now := time.Now()
		row.Status = StatusSkipped
		row.EndTime = &now
		row.SkipReason = event.Data.Reason
		row.StepLabel = ""

	case events.EventFailed:
		row := m.getOrCreateRow(event.ItemIndex, event.Label)
		now := time.Now()
		row.Status = StatusFailed
		row.EndTime = &now

		if event.Data.Error != nil {
			row.ErrorMsg = event.Data.Error.Error()
		}
	}
}

// overallRatio returns the completed fraction of the whole run for the
// progress bar.
func (m *Model) overallRatio() float64 {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	total := m.itemCount
	if total < len(m.items) {
		total = len(m.items)
	}

	if total == 0 {
		return 0
	}

	done := 0

	for _, row := range m.items {
		switch row.Status {
		case StatusSuccess, StatusSkipped, StatusFailed:
			done++
		}
	}

	return float64(done) / float64(total)
}
