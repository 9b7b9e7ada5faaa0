// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runctx

import (
	"testing"

	"github.com/matt-FFFFFF/autobatch/internal/batch"
	"github.com/matt-FFFFFF/autobatch/internal/script"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func template(t *testing.T) *script.Script {
	t.Helper()

	s, err := script.Parse([]byte(`
name: demo
vars:
  version: "1.0"
  host: default
pipeline:
  - cmd: echo {version}
  - cmd: echo {host}
  - cmd: echo done
`))
	require.NoError(t, err)

	return s
}

func TestBuildMergesRowOverDefaults(t *testing.T) {
	rc := Build(template(t), batch.Row{"host": "a", "extra": "x"}, 2)

	assert.Equal(t, "1.0", rc.Variables["version"])
	assert.Equal(t, "a", rc.Variables["host"])
	assert.Equal(t, "x", rc.Variables["extra"])
	assert.Equal(t, "2", rc.Variables["batch_index"])
	assert.Equal(t, 2, rc.BatchIndex)
	assert.Equal(t, 3, rc.CommandCount)
	assert.NotEmpty(t, rc.RunID)
}

func TestBuildCommandCountHonoursSelection(t *testing.T) {
	tmpl := template(t)

	sel, err := script.ParseSelection("e2")
	require.NoError(t, err)

	tmpl.Selection = sel

	rc := Build(tmpl, batch.Row{}, 1)
	assert.Equal(t, 2, rc.CommandCount)
}

func TestBuildIsPureWithRespectToTemplate(t *testing.T) {
	tmpl := template(t)

	first := Build(tmpl, batch.Row{"host": "a"}, 1)
	second := Build(tmpl, batch.Row{"host": "b"}, 2)

	// Mutating one context must never be observable in another, nor in the
	// template.
	first.Variables["host"] = "mutated"
	first.Script.Vars["version"] = "9.9"
	first.Script.Pipeline[0].Cmd = "changed"

	assert.Equal(t, "b", second.Variables["host"])
	assert.Equal(t, "1.0", second.Script.Vars["version"])
	assert.Equal(t, "default", tmpl.Vars["host"])
	assert.Equal(t, "1.0", tmpl.Vars["version"])
	assert.Equal(t, "echo {version}", tmpl.Pipeline[0].Cmd)

	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestGobRoundTrip(t *testing.T) {
	tmpl := template(t)

	sel, err := script.ParseSelection("1,3")
	require.NoError(t, err)

	tmpl.Selection = sel

	rc := Build(tmpl, batch.Row{"host": "a"}, 4)

	fsys := afero.NewMemMapFs()
	require.NoError(t, WriteFile(fsys, "auto4", rc))

	got, err := ReadFile(fsys, "auto4")
	require.NoError(t, err)

	// A reconstructed context must execute identically, including the
	// resolved command counter.
	assert.Equal(t, rc.RunID, got.RunID)
	assert.Equal(t, rc.BatchIndex, got.BatchIndex)
	assert.Equal(t, rc.CommandCount, got.CommandCount)
	assert.Equal(t, rc.Variables, got.Variables)
	assert.Equal(t, rc.Script.Name, got.Script.Name)
	assert.Equal(t, rc.Script.Selection.Effective(3), got.Script.Selection.Effective(3))
	require.Len(t, got.Script.Pipeline, 3)
	assert.Equal(t, rc.Script.Pipeline[0].Cmd, got.Script.Pipeline[0].Cmd)
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(afero.NewMemMapFs(), "nope")
	require.ErrorIs(t, err, ErrReadGob)
}
