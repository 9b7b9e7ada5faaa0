// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package batch produces the ordered sequence of variable rows that drive a
// script run. The default source is a single empty row; a CSV source yields
// one row per record and switches the script into batch processing.
package batch

import (
	"encoding/csv"
	"errors"
	"maps"

	"github.com/matt-FFFFFF/autobatch/internal/script"
	"github.com/spf13/afero"
)

var (
	// ErrOpenVarsFile is returned when the CSV vars file cannot be opened.
	ErrOpenVarsFile = errors.New("failed to open vars file")
	// ErrReadVarsFile is returned when the CSV vars file cannot be parsed.
	ErrReadVarsFile = errors.New("failed to read vars file")
	// ErrNoHeader is returned when the CSV vars file has no header row.
	ErrNoHeader = errors.New("vars file has no header row")
)

// Row is one batch item's variable bindings, keyed by field name.
// Rows are never mutated after they are read from the source.
type Row map[string]string

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	return maps.Clone(r)
}

// Single returns the default source: one empty row, for non-batch runs.
func Single() []Row {
	return []Row{{}}
}

// LoadCSV reads a delimited vars file into ordered rows, one per record, in
// file order. The header row supplies the field names. As a side effect the
// script is flagged for batch processing: in parallel mode every dispatched
// context believes it is a single-item run, so the items count is forced to 1.
func LoadCSV(fsys afero.Fs, path string, s *script.Script, parallel bool) ([]Row, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Join(ErrOpenVarsFile, err)
	}

	defer f.Close() //nolint:errcheck

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Join(ErrReadVarsFile, err)
	}

	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)

	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, field := range header {
			row[field] = record[i]
		}

		rows = append(rows, row)
	}

	s.BatchMode = !parallel
	s.BatchItemsCount = len(rows)

	if parallel {
		s.BatchItemsCount = 1
	}

	return rows, nil
}
