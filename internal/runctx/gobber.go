// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runctx

import (
	"encoding/gob"
	"errors"
	"io"

	"github.com/spf13/afero"
)

var (
	// ErrWriteGob is returned when serializing a run context fails.
	ErrWriteGob = errors.New("failed to write binary run context")
	// ErrReadGob is returned when deserializing a run context fails.
	ErrReadGob = errors.New("failed to read binary run context")
)

// Write serializes the run context to a stable binary encoding. The encoding
// is self-contained so an independently launched process can reconstruct and
// execute the context without shared memory.
func Write(w io.Writer, rc *RunContext) error {
	if err := gob.NewEncoder(w).Encode(rc); err != nil {
		return errors.Join(ErrWriteGob, err)
	}

	return nil
}

// Read reconstructs a run context written by Write.
func Read(r io.Reader) (*RunContext, error) {
	rc := new(RunContext)
	if err := gob.NewDecoder(r).Decode(rc); err != nil {
		return nil, errors.Join(ErrReadGob, err)
	}

	return rc, nil
}

// WriteFile serializes the run context to a file on the given filesystem.
func WriteFile(fsys afero.Fs, path string, rc *RunContext) error {
	f, err := fsys.Create(path)
	if err != nil {
		return errors.Join(ErrWriteGob, err)
	}

	defer f.Close() //nolint:errcheck

	return Write(f, rc)
}

// ReadFile reconstructs a run context from a file on the given filesystem.
func ReadFile(fsys afero.Fs, path string) (*RunContext, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.Join(ErrReadGob, err)
	}

	defer f.Close() //nolint:errcheck

	return Read(f)
}
