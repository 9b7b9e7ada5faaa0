// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	events "github.com/matt-FFFFFF/autobatch/internal/progress"
)

const (
	itemDurationRounding = 100 * time.Millisecond
	barReservedWidth     = 8
	minBarWidth          = 10
)

// EventMsg wraps a progress event for the tea framework.
type EventMsg struct {
	Event events.Event
}

// RunCompletedMsg indicates that the whole batch run has finished.
type RunCompletedMsg struct {
	Err error
}

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return tea.EnterAltScreen
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		barWidth := msg.Width - barReservedWidth
		if barWidth < minBarWidth {
			barWidth = minBarWidth
		}

		m.bar.Width = barWidth

		return m, nil

	case EventMsg:
		m.processEvent(msg.Event)
		return m, m.bar.SetPercent(m.overallRatio())

	case RunCompletedMsg:
		m.completed = true
		m.runErr = msg.Err

		return m, m.bar.SetPercent(1)

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)

		return m, cmd

	case tea.QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return "Shutting down...\n"
	}

	m.mutex.RLock()
	items := make([]*ItemRow, len(m.items))
	copy(items, m.items)
	total := m.itemCount
	m.mutex.RUnlock()

	if total < len(items) {
		total = len(items)
	}

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("Autobatch"))
	view.WriteString("\n")

	view.WriteString(m.bar.View())
	view.WriteString("\n\n")

	for _, row := range items {
		m.renderItemRow(&view, row)
	}

	if m.completed {
		view.WriteString("\n")

		if m.runErr != nil {
			view.WriteString(m.styles.Failed.Render("Run completed with errors"))
		} else {
			view.WriteString(m.styles.Success.Render("Run completed successfully"))
		}

		view.WriteString("\n")
	}

	helpText := "'q' or ctrl+c to quit"
	if m.completed {
		helpText = "'q' to quit and return to terminal"
	}

	view.WriteString(m.styles.Help.Render(helpText))

	return view.String()
}

// renderItemRow renders one batch item line.
func (m *Model) renderItemRow(b *strings.Builder, row *ItemRow) {
	var icon, name string

	switch row.Status {
	case StatusPending:
		icon = "⏳"
		name = m.styles.Pending.Render(row.Label)
	case StatusRunning:
		icon = "⚡"
		name = m.styles.Running.Render(row.Label)
	case StatusSkipped:
		icon = "⏭"
		name = m.styles.Skipped.Render(row.Label)
	case StatusSuccess:
		icon = "✅"
		name = m.styles.Success.Render(row.Label)
	case StatusFailed:
		icon = "❌"
		name = m.styles.Failed.Render(row.Label)
	default:
		icon = "❓"
		name = m.styles.Pending.Render(row.Label)
	}

	line := fmt.Sprintf("%s item %d %s", icon, row.Index, name)

	if row.StepCount > 0 {
		line += m.styles.Detail.Render(fmt.Sprintf(" [%d/%d]", row.StepsDone, row.StepCount))
	}

	if row.Status == StatusRunning && row.StepLabel != "" {
		line += m.styles.Detail.Render(" " + row.StepLabel)
	}

	if row.StartTime != nil {
		elapsed := time.Since(*row.StartTime)
		if row.EndTime != nil {
			elapsed = row.EndTime.Sub(*row.StartTime)
		}

		line += m.styles.Detail.Render(fmt.Sprintf(" (%v)", elapsed.Round(itemDurationRounding)))
	}

	switch {
	case row.Status == StatusFailed && row.ErrorMsg != "":
		line += " " + m.styles.Failed.Render(row.ErrorMsg)
	case row.Status == StatusSkipped && row.SkipReason != "":
		line += " " + m.styles.Skipped.Render(row.SkipReason)
	}

	b.WriteString(line)
	b.WriteString("\n")
}
