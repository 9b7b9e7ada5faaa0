// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package script

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrEmptySelection is returned when a selection directive contains no step numbers.
	ErrEmptySelection = errors.New("step selection is empty")
	// ErrInvalidSelection is returned when a selection directive cannot be parsed.
	ErrInvalidSelection = errors.New("invalid step selection")
)

// Selection is a set of 1-based step positions plus a flag indicating whether
// the set is inclusive or exclusive. The zero value selects every step.
// The set is a bool map so the whole value survives gob encoding when a run
// context is handed to another process.
type Selection struct {
	Exclude bool
	Steps   map[int]bool
}

// ParseSelection parses a step selection directive of the form "[e]N,N,...".
// A leading "e" marks the set as an exclusion.
func ParseSelection(directive string) (Selection, error) {
	sel := Selection{}

	if directive == "" {
		return sel, ErrEmptySelection
	}

	if strings.HasPrefix(directive, "e") {
		sel.Exclude = true
		directive = directive[1:]
	}

	sel.Steps = make(map[int]bool)

	for _, part := range strings.Split(directive, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return Selection{}, fmt.Errorf("%w: %q", ErrInvalidSelection, part)
		}

		sel.Steps[n] = true
	}

	if len(sel.Steps) == 0 {
		return Selection{}, ErrEmptySelection
	}

	return sel, nil
}

// IsZero reports whether the selection is unset and therefore selects every step.
func (s Selection) IsZero() bool {
	return s.Steps == nil
}

// Effective returns the ordered 1-based step positions to execute out of n
// total steps. Out-of-range positions in an inclusive set are dropped rather
// than rejected; an empty result is a legal no-op run.
func (s Selection) Effective(n int) []int {
	if s.IsZero() {
		all := make([]int, 0, n)
		for i := 1; i <= n; i++ {
			all = append(all, i)
		}

		return all
	}

	steps := make([]int, 0, n)

	for i := 1; i <= n; i++ {
		if s.Steps[i] != s.Exclude {
			steps = append(steps, i)
		}
	}

	sort.Ints(steps)

	return steps
}

func (s Selection) clone() Selection {
	if s.Steps == nil {
		return Selection{Exclude: s.Exclude}
	}

	cp := Selection{Exclude: s.Exclude, Steps: make(map[int]bool, len(s.Steps))}
	for k, v := range s.Steps {
		cp.Steps[k] = v
	}

	return cp
}

// String renders the selection back into directive form, primarily for logs.
func (s Selection) String() string {
	if s.IsZero() {
		return "all"
	}

	nums := make([]int, 0, len(s.Steps))
	for n := range s.Steps {
		nums = append(nums, n)
	}

	sort.Ints(nums)

	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}

	out := strings.Join(parts, ",")
	if s.Exclude {
		out = "e" + out
	}

	return out
}
